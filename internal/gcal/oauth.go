package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/mkarlsen/bookline/pkg/logging"
)

// tokenKey stores the admin's OAuth token; single-operator deployment, one
// token for the whole business.
const tokenKey = "booking:gcal:token"

// ErrNoToken means the admin has not connected a Google account yet.
var ErrNoToken = errors.New("gcal: calendar not connected")

// NewOAuthConfig builds the OAuth2 config for the calendar consent flow.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenStore keeps the OAuth token in Redis so it survives restarts.
type TokenStore struct {
	rdb    *redis.Client
	logger *logging.Logger
}

// NewTokenStore creates a token store backed by Redis.
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb, logger: logging.Default()}
}

// WithLogger replaces the store's logger.
func (s *TokenStore) WithLogger(logger *logging.Logger) *TokenStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Save persists the token.
func (s *TokenStore) Save(ctx context.Context, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("gcal: marshal token: %w", err)
	}
	if err := s.rdb.Set(ctx, tokenKey, data, 0).Err(); err != nil {
		return fmt.Errorf("gcal: save token: %w", err)
	}
	return nil
}

// Token loads the stored token, ErrNoToken when none was saved.
func (s *TokenStore) Token(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.rdb.Get(ctx, tokenKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("gcal: load token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("gcal: decode token: %w", err)
	}
	return &tok, nil
}

// Delete disconnects the calendar.
func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("gcal: delete token: %w", err)
	}
	return nil
}

// TokenSource returns a source that refreshes through the OAuth config and
// writes refreshed tokens back to the store.
func (s *TokenStore) TokenSource(ctx context.Context, conf *oauth2.Config) (oauth2.TokenSource, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		ctx:   ctx,
		store: s,
		src:   conf.TokenSource(ctx, tok),
		last:  tok,
	}, nil
}

// persistingSource saves tokens after each refresh so a new access token is
// not lost on restart.
type persistingSource struct {
	ctx   context.Context
	store *TokenStore
	src   oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last.AccessToken {
		// The refreshed token is still served on save failure; only its
		// persistence across restarts is at risk.
		if err := p.store.Save(p.ctx, tok); err != nil {
			p.store.logger.Error("failed to persist refreshed calendar token", "error", err)
		} else {
			p.last = tok
		}
	}
	return tok, nil
}
