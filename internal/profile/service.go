package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// Store persists the singleton profile.
type Store interface {
	Get(ctx context.Context) (Profile, error)
	Put(ctx context.Context, p Profile) error
}

// Service wraps the store with validation and defaults.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Get returns the stored profile, or an empty one when none was saved yet.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	p, err := s.store.Get(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile: load: %w", err)
	}
	return p, nil
}

// Update validates and stores the new profile.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Profile, error) {
	if err := in.Validate(); err != nil {
		return Profile{}, err
	}
	p := in.Apply()
	if err := s.store.Put(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("profile: save: %w", err)
	}
	s.logger.Info("profile updated", slog.String("name", p.Name))
	return p, nil
}
