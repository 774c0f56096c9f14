package review

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
)

// Selector computes the items due for a first or second notification.
type Selector struct {
	content repository.ContentRepository
	log     repository.ReviewLogRepository
}

func NewSelector(content repository.ContentRepository, log repository.ReviewLogRepository) *Selector {
	return &Selector{content: content, log: log}
}

// FirstCandidates returns published items older than the configured
// threshold that have never been notified, capped at the per-run limit.
func (s *Selector) FirstCandidates(ctx context.Context, cfg model.RunConfig, now time.Time) ([]*model.ContentItem, error) {
	cutoff := cfg.ThresholdUnit.Shift(now, -cfg.Threshold)

	exclude, err := s.log.ListNotifiedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list already notified items: %w", err)
	}

	items, err := s.content.FindPublishedModifiedBefore(ctx, cutoff, cfg.CategoryFilter(), exclude, cfg.LimitPerRun)
	if err != nil {
		return nil, fmt.Errorf("failed to select first notification candidates: %w", err)
	}

	return items, nil
}

// SecondCandidates returns published items whose follow-up notification is
// due. The remaining budget is what the first phase left of the per-run
// limit; a spent budget short-circuits to an empty result.
func (s *Selector) SecondCandidates(ctx context.Context, cfg model.RunConfig, now time.Time, remaining int) ([]*model.ContentItem, error) {
	if remaining <= 0 {
		return nil, nil
	}

	ids, err := s.log.FindDueForSecond(ctx, now, remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to find due second notifications: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// Unpublished or filtered-out ids drop out of the result here.
	items, err := s.content.FindPublishedByIDs(ctx, ids, cfg.CategoryFilter(), remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to select second notification candidates: %w", err)
	}

	return items, nil
}
