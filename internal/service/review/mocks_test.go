package review_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/content-notifier/internal/model"
	pkgerrors "github.com/jwalitptl/content-notifier/pkg/errors"
	"github.com/jwalitptl/content-notifier/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

// mockContentRepo delegates to function fields; nil fields return empty.
type mockContentRepo struct {
	FindPublishedModifiedBeforeFunc func(ctx context.Context, cutoff time.Time, filter model.CategoryFilter, excludeIDs []int64, limit int) ([]*model.ContentItem, error)
	FindPublishedByIDsFunc          func(ctx context.Context, ids []int64, filter model.CategoryFilter, limit int) ([]*model.ContentItem, error)
}

func (r *mockContentRepo) FindPublishedModifiedBefore(ctx context.Context, cutoff time.Time, filter model.CategoryFilter, excludeIDs []int64, limit int) ([]*model.ContentItem, error) {
	if r.FindPublishedModifiedBeforeFunc != nil {
		return r.FindPublishedModifiedBeforeFunc(ctx, cutoff, filter, excludeIDs, limit)
	}
	return nil, nil
}

func (r *mockContentRepo) FindPublishedByIDs(ctx context.Context, ids []int64, filter model.CategoryFilter, limit int) ([]*model.ContentItem, error) {
	if r.FindPublishedByIDsFunc != nil {
		return r.FindPublishedByIDsFunc(ctx, ids, filter, limit)
	}
	return nil, nil
}

// fakeContentRepo mimics the SQL semantics of the content queries against an
// in-memory item slice.
type fakeContentRepo struct {
	items []*model.ContentItem
	Err   error
}

func (r *fakeContentRepo) FindPublishedModifiedBefore(_ context.Context, cutoff time.Time, filter model.CategoryFilter, excludeIDs []int64, limit int) ([]*model.ContentItem, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if limit <= 0 {
		return nil, nil
	}

	excluded := make(map[int64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var out []*model.ContentItem
	for _, item := range r.items {
		if item.State != model.StatePublished || excluded[item.ID] {
			continue
		}
		if !item.ModifiedAt.Before(cutoff) || !filter.Matches(item.CategoryID) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeContentRepo) FindPublishedByIDs(_ context.Context, ids []int64, filter model.CategoryFilter, limit int) ([]*model.ContentItem, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if limit <= 0 || len(ids) == 0 {
		return nil, nil
	}

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []*model.ContentItem
	for _, item := range r.items {
		if !wanted[item.ID] || item.State != model.StatePublished || !filter.Matches(item.CategoryID) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// memoryReviewLog is a map-backed review log store with the repository's
// duplicate and not-found semantics.
type memoryReviewLog struct {
	mu      sync.Mutex
	entries map[int64]*model.ReviewLogEntry

	// DueOverride replaces FindDueForSecond when set.
	DueOverride func(now time.Time, limit int) []int64
	DueCalls    int
	ListErr     error
}

func newMemoryReviewLog() *memoryReviewLog {
	return &memoryReviewLog{entries: make(map[int64]*model.ReviewLogEntry)}
}

func (s *memoryReviewLog) RecordFirstNotification(_ context.Context, articleID int64, sentAt, secondDueAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[articleID]; ok {
		return pkgerrors.Duplicate("review log entry", nil)
	}
	s.entries[articleID] = &model.ReviewLogEntry{
		ArticleID:               articleID,
		LastNotificationAt:      sentAt,
		SecondNotificationDueAt: secondDueAt,
	}
	return nil
}

func (s *memoryReviewLog) FindDueForSecond(_ context.Context, now time.Time, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DueCalls++
	if s.DueOverride != nil {
		return s.DueOverride(now, limit), nil
	}

	var ids []int64
	for id, entry := range s.entries {
		if entry.SecondNotificationSentAt == nil && entry.SecondNotificationDueAt.Before(now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *memoryReviewLog) Get(_ context.Context, articleID int64) (*model.ReviewLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[articleID]
	if !ok {
		return nil, pkgerrors.NotFound("review log entry", nil)
	}
	copied := *entry
	return &copied, nil
}

func (s *memoryReviewLog) Remove(_ context.Context, articleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, articleID)
	return nil
}

func (s *memoryReviewLog) MarkSecondSent(_ context.Context, articleID int64, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[articleID]
	if !ok {
		return pkgerrors.NotFound("review log entry", nil)
	}
	entry.SecondNotificationSentAt = &sentAt
	return nil
}

func (s *memoryReviewLog) ListNotifiedIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ListErr != nil {
		return nil, s.ListErr
	}

	ids := make([]int64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type mockUserRepo struct {
	GetFunc        func(ctx context.Context, id int64) (*model.User, error)
	FindAdminsFunc func(ctx context.Context, emailFilter []string) ([]*model.User, error)
}

func (r *mockUserRepo) Get(ctx context.Context, id int64) (*model.User, error) {
	if r.GetFunc != nil {
		return r.GetFunc(ctx, id)
	}
	return nil, pkgerrors.NotFound("user", nil)
}

func (r *mockUserRepo) FindAdmins(ctx context.Context, emailFilter []string) ([]*model.User, error) {
	if r.FindAdminsFunc != nil {
		return r.FindAdminsFunc(ctx, emailFilter)
	}
	return nil, nil
}

type sentMail struct {
	TemplateKey string
	To          string
	Language    string
	Data        map[string]string
}

type mockMailer struct {
	Sent   []sentMail
	FailTo map[string]error
}

func (m *mockMailer) Send(_ context.Context, templateKey, to, language string, data map[string]string) error {
	if err, ok := m.FailTo[to]; ok {
		return err
	}
	m.Sent = append(m.Sent, sentMail{TemplateKey: templateKey, To: to, Language: language, Data: data})
	return nil
}

type mockDiag struct {
	Messages []string
	Err      error
}

func (d *mockDiag) Log(message string) error {
	if d.Err != nil {
		return d.Err
	}
	d.Messages = append(d.Messages, message)
	return nil
}
