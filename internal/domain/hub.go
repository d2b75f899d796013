package domain

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrHubStopped      = errors.New("hub is stopped")
)

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	Stats() HubStats
}

type HubStats struct {
	Clients  int64 `json:"clients"`
	Sessions int64 `json:"sessions"`
}

type ProfileRepository interface {
	Load(ctx context.Context, key string) (Profile, error)
	Save(ctx context.Context, key string, profile Profile) error
}
