package model

import "time"

// ReviewLogEntry is the durable per-item notification record. One row exists
// per content item that has received a first notification; the row is removed
// when the item is edited before the second notification fires.
type ReviewLogEntry struct {
	ArticleID                int64      `db:"article_id"`
	LastNotificationAt       time.Time  `db:"last_notification_at"`
	SecondNotificationDueAt  time.Time  `db:"second_notification_due_at"`
	SecondNotificationSentAt *time.Time `db:"second_notification_sent_at"`
}

// SecondSent reports whether the follow-up notification already went out.
func (e *ReviewLogEntry) SecondSent() bool {
	return e.SecondNotificationSentAt != nil
}
