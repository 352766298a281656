// Package bootstrap builds the process-wide clients main wires together.
package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/mkarlsen/bookline/internal/config"
	"github.com/mkarlsen/bookline/internal/gcal"
	"github.com/mkarlsen/bookline/internal/notify"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// BuildRedisClient returns a configured Redis client. When verify is true, a
// ping is issued and failures surface as an error; settings live in Redis so
// the API cannot run without it.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, verify bool) (*redis.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, fmt.Errorf("bootstrap: redis address not configured")
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if verify {
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("bootstrap: redis ping: %w", err)
		}
	}
	return client, nil
}

// BuildPostgresPool opens the pgx pool backing services and bookings.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL not configured")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: postgres ping: %w", err)
	}
	return pool, nil
}

// BuildCalendar wires the Google Calendar client when sync is enabled and a
// token has been stored. A disabled or not-yet-connected calendar returns
// nils; the booking flow then runs without sync.
func BuildCalendar(ctx context.Context, cfg *appconfig.Config, rdb *redis.Client, logger *logging.Logger) (*gcal.Client, *gcal.TokenStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.CalendarSyncEnabled {
		return nil, nil, nil
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, nil, fmt.Errorf("bootstrap: calendar sync enabled but Google OAuth client not configured")
	}

	store := gcal.NewTokenStore(rdb).WithLogger(logger)
	conf := gcal.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleOAuthRedirect)
	ts, err := store.TokenSource(ctx, conf)
	if errors.Is(err, gcal.ErrNoToken) {
		logger.Warn("calendar sync enabled but no Google account connected yet")
		return nil, store, nil
	}
	if err != nil {
		return nil, nil, err
	}

	client, err := gcal.NewClient(ctx, gcal.Config{
		CalendarID:   cfg.GoogleCalendarID,
		FetchTimeout: cfg.CalendarFetchTimeout,
	}, ts, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, store, nil
}

// BuildEmailSender wires SendGrid, nil when no API key is set.
func BuildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		return nil
	}
	return sender
}
