package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/content-notifier/internal/model"
)

// ContentRepository reads published content from the CMS tables.
type ContentRepository interface {
	// FindPublishedModifiedBefore returns published items whose modification
	// time precedes cutoff, honoring the category filter, excluding the given
	// ids and capped at limit.
	FindPublishedModifiedBefore(ctx context.Context, cutoff time.Time, filter model.CategoryFilter, excludeIDs []int64, limit int) ([]*model.ContentItem, error)

	// FindPublishedByIDs returns the published items among ids that pass the
	// category filter, capped at limit. Missing, unpublished or filtered-out
	// ids are silently absent from the result.
	FindPublishedByIDs(ctx context.Context, ids []int64, filter model.CategoryFilter, limit int) ([]*model.ContentItem, error)
}

// ReviewLogRepository is the durable notification state per content item.
type ReviewLogRepository interface {
	// RecordFirstNotification inserts the log row for an item. It fails with
	// a duplicate error if a row already exists.
	RecordFirstNotification(ctx context.Context, articleID int64, sentAt, secondDueAt time.Time) error

	// FindDueForSecond returns ids whose second notification is due before
	// now and has not been sent, capped at limit.
	FindDueForSecond(ctx context.Context, now time.Time, limit int) ([]int64, error)

	// Get returns the log entry for an item, or a not-found error.
	Get(ctx context.Context, articleID int64) (*model.ReviewLogEntry, error)

	// Remove deletes the log row for an item. Removing an absent row is not
	// an error.
	Remove(ctx context.Context, articleID int64) error

	// MarkSecondSent stamps the second notification as sent. It fails with a
	// not-found error if no row exists.
	MarkSecondSent(ctx context.Context, articleID int64, sentAt time.Time) error

	// ListNotifiedIDs returns every item id present in the log.
	ListNotifiedIDs(ctx context.Context) ([]int64, error)
}

// UserRepository resolves notification recipients from the user directory.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)

	// FindAdmins returns active, non-blocked, email-enabled users belonging
	// to a role with the root admin capability. A non-empty emailFilter
	// restricts the result to those addresses, compared case-insensitively.
	FindAdmins(ctx context.Context, emailFilter []string) ([]*model.User, error)
}
