package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mkarlsen/bookline/internal/schedule"
)

const storeKey = "booking:settings"

// Store provides persistence for scheduling settings.
type Store struct {
	redis    *redis.Client
	fallback func() *Settings
}

// NewStore creates a new settings store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient, fallback: Default}
}

// WithDefaults overrides the timezone and slot interval used before the
// admin saves anything, typically from environment configuration.
func (s *Store) WithDefaults(timezone string, intervalMinutes int) *Store {
	s.fallback = func() *Settings {
		cfg := Default()
		if timezone != "" {
			cfg.Timezone = timezone
		}
		if intervalMinutes > 0 {
			cfg.SlotIntervalMinutes = intervalMinutes
		}
		return cfg
	}
	return s
}

// Get retrieves the scheduling settings, returning defaults if never saved.
func (s *Store) Get(ctx context.Context) (*Settings, error) {
	data, err := s.redis.Get(ctx, storeKey).Bytes()
	if err == redis.Nil {
		return s.fallback(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: get: %w", err)
	}

	var cfg Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("settings: unmarshal: %w", err)
	}
	if cfg.Overrides == nil {
		cfg.Overrides = schedule.Overrides{}
	}
	return &cfg, nil
}

// Set saves scheduling settings.
func (s *Store) Set(ctx context.Context, cfg *Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, storeKey, data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}
