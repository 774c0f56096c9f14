// Package cache wraps the user directory with a TTL cache. One run can
// resolve the same owner for many items, and the directory rarely changes
// between runs.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository"
)

const adminsKey = "admins"

type cachedUserRepository struct {
	inner repository.UserRepository
	cache *gocache.Cache
}

// NewUserRepository wraps inner with a TTL cache on both lookups.
func NewUserRepository(inner repository.UserRepository, ttl, cleanupInterval time.Duration) repository.UserRepository {
	return &cachedUserRepository{
		inner: inner,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func (r *cachedUserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	key := fmt.Sprintf("user:%d", id)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*model.User), nil
	}

	user, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(key, user)
	return user, nil
}

func (r *cachedUserRepository) FindAdmins(ctx context.Context, emailFilter []string) ([]*model.User, error) {
	key := adminsKey
	if len(emailFilter) > 0 {
		key = adminsKey + ":" + strings.ToLower(strings.Join(emailFilter, ","))
	}

	if cached, ok := r.cache.Get(key); ok {
		return cached.([]*model.User), nil
	}

	admins, err := r.inner.FindAdmins(ctx, emailFilter)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(key, admins)
	return admins, nil
}
