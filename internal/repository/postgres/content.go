package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
)

type contentRepository struct {
	BaseRepository
}

func NewContentRepository(base BaseRepository) repository.ContentRepository {
	return &contentRepository{base}
}

const contentColumns = `id, title, created_at, modified_at, category_id, created_by, modified_by, state, language`

func (r *contentRepository) FindPublishedModifiedBefore(ctx context.Context, cutoff time.Time, filter model.CategoryFilter, excludeIDs []int64, limit int) ([]*model.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + contentColumns + ` FROM content
		WHERE state = ? AND modified_at < ?
	`
	args := []interface{}{model.StatePublished, cutoff}

	query, args = appendCategoryFilter(query, args, filter)

	if len(excludeIDs) > 0 {
		query += " AND id NOT IN (?)"
		args = append(args, excludeIDs)
	}

	query += " ORDER BY modified_at ASC LIMIT ?"
	args = append(args, limit)

	return r.selectItems(ctx, query, args)
}

func (r *contentRepository) FindPublishedByIDs(ctx context.Context, ids []int64, filter model.CategoryFilter, limit int) ([]*model.ContentItem, error) {
	if limit <= 0 || len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + contentColumns + ` FROM content
		WHERE state = ? AND id IN (?)
	`
	args := []interface{}{model.StatePublished, ids}

	query, args = appendCategoryFilter(query, args, filter)

	query += " ORDER BY modified_at ASC LIMIT ?"
	args = append(args, limit)

	return r.selectItems(ctx, query, args)
}

func (r *contentRepository) selectItems(ctx context.Context, query string, args []interface{}) ([]*model.ContentItem, error) {
	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build content query: %w", err)
	}

	var items []*model.ContentItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), expanded...); err != nil {
		return nil, fmt.Errorf("failed to select content: %w", err)
	}

	return items, nil
}

func appendCategoryFilter(query string, args []interface{}, filter model.CategoryFilter) (string, []interface{}) {
	if filter.Empty() {
		return query, args
	}
	if filter.Include {
		query += " AND category_id IN (?)"
	} else {
		query += " AND category_id NOT IN (?)"
	}
	return query, append(args, filter.IDs)
}
