package memory

import (
	"context"
	"sync"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
)

type repository struct {
	mu       *sync.RWMutex
	profiles map[string]domain.Profile
}

func New() repository {
	return repository{
		mu:       &sync.RWMutex{},
		profiles: make(map[string]domain.Profile),
	}
}

func (r repository) Load(_ context.Context, key string) (domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[key]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (r repository) Save(_ context.Context, key string, profile domain.Profile) error {
	r.mu.Lock()
	r.profiles[key] = profile
	r.mu.Unlock()
	return nil
}
