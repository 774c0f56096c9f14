package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
	pkgerrors "github.com/jwalitptl/content-notifier/pkg/errors"
)

const pqUniqueViolation = "23505"

type reviewLogRepository struct {
	BaseRepository
}

func NewReviewLogRepository(base BaseRepository) repository.ReviewLogRepository {
	return &reviewLogRepository{base}
}

func (r *reviewLogRepository) RecordFirstNotification(ctx context.Context, articleID int64, sentAt, secondDueAt time.Time) error {
	query := `
		INSERT INTO review_notification_log (
			article_id, last_notification_at, second_notification_due_at
		) VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, articleID, sentAt, secondDueAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return pkgerrors.Duplicate("review log entry", err)
		}
		return fmt.Errorf("failed to record first notification: %w", err)
	}

	return nil
}

func (r *reviewLogRepository) FindDueForSecond(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	query := `
		SELECT article_id FROM review_notification_log
		WHERE second_notification_due_at < $1
		AND second_notification_sent_at IS NULL
		ORDER BY second_notification_due_at ASC
		LIMIT $2
	`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to select due second notifications: %w", err)
	}

	return ids, nil
}

func (r *reviewLogRepository) Get(ctx context.Context, articleID int64) (*model.ReviewLogEntry, error) {
	query := `
		SELECT article_id, last_notification_at, second_notification_due_at, second_notification_sent_at
		FROM review_notification_log
		WHERE article_id = $1
	`

	var entry model.ReviewLogEntry
	if err := r.db.GetContext(ctx, &entry, query, articleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NotFound("review log entry", err)
		}
		return nil, fmt.Errorf("failed to get review log entry: %w", err)
	}

	return &entry, nil
}

func (r *reviewLogRepository) Remove(ctx context.Context, articleID int64) error {
	query := `DELETE FROM review_notification_log WHERE article_id = $1`

	if _, err := r.db.ExecContext(ctx, query, articleID); err != nil {
		return fmt.Errorf("failed to remove review log entry: %w", err)
	}

	return nil
}

func (r *reviewLogRepository) MarkSecondSent(ctx context.Context, articleID int64, sentAt time.Time) error {
	query := `
		UPDATE review_notification_log
		SET second_notification_sent_at = $1
		WHERE article_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, sentAt, articleID)
	if err != nil {
		return fmt.Errorf("failed to mark second notification sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("review log entry", nil)
	}

	return nil
}

func (r *reviewLogRepository) ListNotifiedIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT article_id FROM review_notification_log`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list notified article ids: %w", err)
	}

	return ids, nil
}
