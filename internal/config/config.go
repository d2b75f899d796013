package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

var (
	ErrNegativeAIDelay    = errors.New("ai delay must not be negative")
	ErrInvalidSessionTTL  = errors.New("session ttl must be positive")
	ErrInvalidSweepPeriod = errors.New("session sweep period must be positive")
)

const (
	defaultAddr        = ":8080"
	defaultAIDelay     = 420 * time.Millisecond
	defaultSessionTTL  = 30 * time.Minute
	defaultSweepPeriod = time.Minute
	defaultKeyPrefix   = "ttt:profile:"
	defaultLogLevel    = "info"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type GameConfig struct {
	AIDelay time.Duration `yaml:"ai_delay"`
}

type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	SweepPeriod time.Duration `yaml:"sweep_period"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type config struct {
	Server  ServerConfig  `yaml:"server"`
	Game    GameConfig    `yaml:"game"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

func defaults() config {
	return config{
		Server:  ServerConfig{Addr: defaultAddr},
		Game:    GameConfig{AIDelay: defaultAIDelay},
		Session: SessionConfig{TTL: defaultSessionTTL, SweepPeriod: defaultSweepPeriod},
		Redis:   RedisConfig{KeyPrefix: defaultKeyPrefix},
		Log:     LogConfig{Level: defaultLogLevel},
	}
}

// New reads the YAML file at cfgPath over the defaults, then applies .env and environment overrides.
// A missing file is not an error.
func New(cfgPath string) (config, error) {
	cfg := defaults()
	if err := decodeFile(cfgPath, &cfg); err != nil {
		return config{}, err
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config{}, errors.WithMessage(err, "load .env")
	}
	if err := applyEnv(&cfg); err != nil {
		return config{}, err
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func decodeFile(cfgPath string, cfg *config) error {
	file, err := os.Open(cfgPath)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return errors.WithMessage(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return errors.WithMessagef(err, "decode config file '%s'", cfgPath)
	}
	return nil
}

func applyEnv(cfg *config) error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("AI_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WithMessage(err, "parse AI_DELAY")
		}
		cfg.Game.AIDelay = d
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		if err := applyRedisURL(&cfg.Redis, v); err != nil {
			return err
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// applyRedisURL accepts either host:port or a redis:// URL carrying password and db.
func applyRedisURL(cfg *RedisConfig, v string) error {
	if !strings.Contains(v, "://") {
		cfg.Addr = v
		return nil
	}
	opts, err := redis.ParseURL(v)
	if err != nil {
		return errors.WithMessage(err, "parse REDIS_URL")
	}
	cfg.Addr = opts.Addr
	cfg.DB = opts.DB
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	return nil
}

func (c config) validate() error {
	switch {
	case c.Game.AIDelay < 0:
		return ErrNegativeAIDelay
	case c.Session.TTL <= 0:
		return ErrInvalidSessionTTL
	case c.Session.SweepPeriod <= 0:
		return ErrInvalidSweepPeriod
	}
	return nil
}
