package model

import "time"

// PublishState is the workflow state of a content item.
type PublishState int

const (
	StateUnpublished PublishState = 0
	StatePublished   PublishState = 1
	StateArchived    PublishState = 2
	StateTrashed     PublishState = -2
)

// ContentItem is a read-only view of a CMS content row. Only the fields the
// notifier needs are mapped.
type ContentItem struct {
	ID         int64        `db:"id"`
	Title      string       `db:"title"`
	CreatedAt  time.Time    `db:"created_at"`
	ModifiedAt time.Time    `db:"modified_at"`
	CategoryID int64        `db:"category_id"`
	CreatedBy  int64        `db:"created_by"`
	ModifiedBy int64        `db:"modified_by"`
	State      PublishState `db:"state"`
	Language   string       `db:"language"`
}

// CategoryFilter restricts a content query to (or away from) a category set.
// An empty ID list matches all categories.
type CategoryFilter struct {
	IDs     []int64
	Include bool
}

// Empty reports whether the filter matches everything.
func (f CategoryFilter) Empty() bool {
	return len(f.IDs) == 0
}

// Matches reports whether the given category passes the filter.
func (f CategoryFilter) Matches(categoryID int64) bool {
	if f.Empty() {
		return true
	}
	for _, id := range f.IDs {
		if id == categoryID {
			return f.Include
		}
	}
	return !f.Include
}
