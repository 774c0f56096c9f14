package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/content-notifier/internal/email"
	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
	pkgerrors "github.com/jwalitptl/content-notifier/pkg/errors"
	"github.com/jwalitptl/content-notifier/pkg/logger"
	"github.com/jwalitptl/content-notifier/pkg/metrics"
)

// Diagnostics is the durable run log. A failing write is the one condition
// that aborts a run with a fatal status.
type Diagnostics interface {
	Log(message string) error
}

// LinkBuilder constructs the URLs embedded in notification mails.
type LinkBuilder interface {
	SiteBaseURL() string
	PublicURL(articleID, categoryID int64, language string) string
	EditURL(articleID, categoryID int64, language string) string
	BackendURL(articleID int64) string
}

// Site carries the site identity used in mail substitutions.
type Site struct {
	Name     string
	Language string
}

// fatalError marks conditions that must end the run with a fatal status.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Runner orchestrates one notification run: select due items, resolve
// recipients, dispatch mails and update the review log.
//
// Items are processed strictly sequentially, and the first phase completes
// all its log writes before second-phase selection runs, so the due-for-
// second query sees this run's own mutations.
type Runner struct {
	selector *Selector
	resolver *Resolver
	log      repository.ReviewLogRepository
	mailer   email.Mailer
	links    LinkBuilder
	diag     Diagnostics
	site     Site
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the runner's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(
	selector *Selector,
	resolver *Resolver,
	log repository.ReviewLogRepository,
	mailer email.Mailer,
	links LinkBuilder,
	diag Diagnostics,
	site Site,
	logger *logger.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Runner {
	r := &Runner{
		selector: selector,
		resolver: resolver,
		log:      log,
		mailer:   mailer,
		links:    links,
		diag:     diag,
		site:     site,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one notification pass. Repository failures during selection
// fail the run as ordinary errors; a diagnostics write failure or a
// duplicate log insert returns a fatal status.
func (r *Runner) Run(ctx context.Context, cfg model.RunConfig) (model.RunResult, error) {
	result := model.RunResult{Status: model.StatusOK}
	started := time.Now()

	defer func() {
		if r.metrics != nil {
			r.metrics.RunsTotal.WithLabelValues(result.Status.String()).Inc()
			r.metrics.RunDuration.Observe(time.Since(started).Seconds())
		}
	}()

	runLog := r.logger.WithFields(map[string]interface{}{"run_id": uuid.New().String()})
	runLog.Debug("review notification run start")

	now := r.now()

	first, err := r.selector.FirstCandidates(ctx, cfg, now)
	if err != nil {
		return result, err
	}

	remaining := cfg.LimitPerRun - len(first)

	for _, item := range first {
		if err := r.notifyFirst(ctx, cfg, item, now, &result); err != nil {
			return r.finish(result, err)
		}
	}

	if cfg.SecondEnabled {
		second, err := r.selector.SecondCandidates(ctx, cfg, r.now(), remaining)
		if err != nil {
			return result, err
		}

		for _, item := range second {
			if err := r.notifySecond(ctx, cfg, item, &result); err != nil {
				return r.finish(result, err)
			}
		}
	}

	endMsg := fmt.Sprintf("review notification run end: first=%d second=%d cancelled=%d skipped=%d",
		result.FirstSent, result.SecondSent, result.Cancelled, result.Skipped)
	if err := r.diagnostic(endMsg); err != nil {
		return r.finish(result, err)
	}

	return result, nil
}

// finish classifies err and stamps a fatal status when it warrants one.
func (r *Runner) finish(result model.RunResult, err error) (model.RunResult, error) {
	var fatal *fatalError
	if errors.As(err, &fatal) {
		result.Status = model.StatusFatal
	}
	return result, err
}

func (r *Runner) notifyFirst(ctx context.Context, cfg model.RunConfig, item *model.ContentItem, now time.Time, result *model.RunResult) error {
	recipients := r.resolver.Resolve(ctx, cfg, item, r.site.Language)
	if len(recipients) == 0 {
		result.Skipped++
		if r.metrics != nil {
			r.metrics.ItemsSkipped.Inc()
		}
		return r.diagnostic(fmt.Sprintf("empty recipients for article id %d", item.ID))
	}

	if err := r.dispatch(ctx, cfg, "first", email.TemplateFirstNotification, item, recipients); err != nil {
		return err
	}

	secondDue := cfg.SecondDelayUnit.Shift(now, cfg.SecondDelay)
	if err := r.log.RecordFirstNotification(ctx, item.ID, now, secondDue); err != nil {
		if pkgerrors.IsDuplicate(err) {
			// Single-run sequential processing should make this impossible.
			return &fatalError{err: fmt.Errorf("duplicate review log entry for article %d: %w", item.ID, err)}
		}
		return fmt.Errorf("failed to record first notification for article %d: %w", item.ID, err)
	}

	result.FirstSent++
	return nil
}

func (r *Runner) notifySecond(ctx context.Context, cfg model.RunConfig, item *model.ContentItem, result *model.RunResult) error {
	entry, err := r.log.Get(ctx, item.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			result.Skipped++
			return nil
		}
		return fmt.Errorf("failed to load review log entry for article %d: %w", item.ID, err)
	}

	// An edit after the first notification means the owner acted; drop the
	// pending reminder and let the item age into a fresh first notification.
	if item.ModifiedAt.After(entry.LastNotificationAt) {
		if err := r.log.Remove(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to cancel reminder for article %d: %w", item.ID, err)
		}
		result.Cancelled++
		if r.metrics != nil {
			r.metrics.ItemsCancelled.Inc()
		}
		return r.diagnostic(fmt.Sprintf("article %d was modified after the first notification, reminder cancelled", item.ID))
	}

	if entry.SecondSent() {
		result.Skipped++
		return nil
	}

	if entry.SecondNotificationDueAt.After(r.now()) {
		result.Skipped++
		return nil
	}

	recipients := r.resolver.Resolve(ctx, cfg, item, r.site.Language)
	if len(recipients) == 0 {
		result.Skipped++
		if r.metrics != nil {
			r.metrics.ItemsSkipped.Inc()
		}
		return r.diagnostic(fmt.Sprintf("empty recipients for article id %d", item.ID))
	}

	if err := r.dispatch(ctx, cfg, "second", email.TemplateSecondNotification, item, recipients); err != nil {
		return err
	}

	if err := r.log.MarkSecondSent(ctx, item.ID, r.now()); err != nil {
		return fmt.Errorf("failed to mark second notification sent for article %d: %w", item.ID, err)
	}

	result.SecondSent++
	return nil
}

// dispatch sends one mail per recipient. Mail failures are logged as
// diagnostics and do not stop the run; only a failing diagnostic write does.
func (r *Runner) dispatch(ctx context.Context, cfg model.RunConfig, phase, templateKey string, item *model.ContentItem, recipients []model.Recipient) error {
	for _, rcpt := range recipients {
		data := r.substitutions(cfg, item, rcpt.Language)

		if err := r.mailer.Send(ctx, templateKey, rcpt.Email, rcpt.Language, data); err != nil {
			if !email.IsDispatchFailure(err) {
				return fmt.Errorf("failed to send notification for article %d: %w", item.ID, err)
			}
			if r.metrics != nil {
				r.metrics.EmailFailures.Inc()
			}
			if derr := r.diagnostic(fmt.Sprintf("mail dispatch failed for article %d to %s: %v", item.ID, rcpt.Email, err)); derr != nil {
				return derr
			}
			continue
		}

		if r.metrics != nil {
			r.metrics.EmailsSent.WithLabelValues(phase).Inc()
		}
	}

	return nil
}

func (r *Runner) diagnostic(message string) error {
	if err := r.diag.Log(message); err != nil {
		return &fatalError{err: fmt.Errorf("diagnostics log failed: %w", err)}
	}
	return nil
}

func (r *Runner) substitutions(cfg model.RunConfig, item *model.ContentItem, language string) map[string]string {
	return map[string]string{
		"title":         item.Title,
		"public_url":    r.links.PublicURL(item.ID, item.CategoryID, item.Language),
		"sitename":      r.site.Name,
		"url":           r.links.SiteBaseURL(),
		"last_modified": formatLocalized(item.ModifiedAt, language),
		"created":       formatLocalized(item.CreatedAt, language),
		"edit_url":      r.links.EditURL(item.ID, item.CategoryID, item.Language),
		"backend_url":   r.links.BackendURL(item.ID),
		"age":           strconv.Itoa(cfg.Threshold),
		"age_unit":      string(cfg.ThresholdUnit),
	}
}

func formatLocalized(t time.Time, language string) string {
	if strings.HasPrefix(strings.ToLower(language), "de") {
		return t.Format("02.01.2006 15:04")
	}
	return t.Format("2006-01-02 15:04")
}
