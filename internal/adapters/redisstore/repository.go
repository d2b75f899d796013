package redisstore

import (
	"context"
	"time"

	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Profiles expire after profileTTL without a save.
const profileTTL = 30 * 24 * time.Hour

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type repository struct {
	cli    *redis.Client
	prefix string
}

// New connects to redis and checks the connection with a ping.
func New(ctx context.Context, opts Options) (repository, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return repository{}, errors.WithMessagef(err, "ping redis at '%s'", opts.Addr)
	}
	return repository{cli: cli, prefix: opts.KeyPrefix}, nil
}

func (r repository) key(clientKey string) string {
	return r.prefix + clientKey
}

func (r repository) Load(ctx context.Context, key string) (domain.Profile, error) {
	data, err := r.cli.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domain.Profile{}, domain.ErrProfileNotFound
	case err != nil:
		return domain.Profile{}, errors.WithMessage(err, "redis get")
	}
	var profile domain.Profile
	if err := utils.Json.Unmarshal(data, &profile); err != nil {
		return domain.Profile{}, errors.WithMessage(err, "unmarshal profile")
	}
	return profile, nil
}

func (r repository) Save(ctx context.Context, key string, profile domain.Profile) error {
	data, err := utils.Json.Marshal(profile)
	if err != nil {
		return errors.WithMessage(err, "marshal profile")
	}
	if err := r.cli.Set(ctx, r.key(key), data, profileTTL).Err(); err != nil {
		return errors.WithMessage(err, "redis set")
	}
	return nil
}

func (r repository) Close() error {
	return r.cli.Close()
}
