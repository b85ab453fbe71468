// Package user serves read-only user projections, cached in Redis by id.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

const cacheTTL = time.Hour

var (
	// ErrInvalidID is returned for an id that is not a UUID.
	ErrInvalidID = errors.New("invalid user id format")
	// ErrNotFound is returned when no user has the id.
	ErrNotFound = errors.New("user not found")
)

// Repository is the credential store used for projections.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache describes the key/value cache.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service returns users without their password hashes.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewUserService returns a Service.
func NewUserService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	const op = "services.user.List"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Get returns the user with id, reading through the cache.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.user.Get"

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	cacheKey := "user:" + id
	var cached models.User
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.Set(ctx, cacheKey, u, cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return u, nil
}
