package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
	pkgerrors "github.com/jwalitptl/content-notifier/pkg/errors"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, email, language, blocked, send_email FROM users
		WHERE id = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) FindAdmins(ctx context.Context, emailFilter []string) ([]*model.User, error) {
	query := `
		SELECT u.id, u.email, u.language, u.blocked, u.send_email FROM users u
		WHERE u.blocked = FALSE
		AND u.send_email = TRUE
		AND EXISTS (
			SELECT 1 FROM user_role_map m
			JOIN roles r ON r.id = m.role_id
			WHERE m.user_id = u.id AND r.admin = TRUE
		)
	`
	args := []interface{}{}

	if len(emailFilter) > 0 {
		lowered := make([]string, 0, len(emailFilter))
		for _, email := range emailFilter {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(email)))
		}
		query += " AND LOWER(u.email) IN (?)"
		args = append(args, lowered)
	}

	query += " ORDER BY u.id ASC"

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build admin query: %w", err)
	}

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), expanded...); err != nil {
		return nil, fmt.Errorf("failed to select admin users: %w", err)
	}

	return users, nil
}
