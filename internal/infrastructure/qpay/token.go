package qpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"golang.org/x/oauth2"
)

// refreshMargin is how long before expiry a token is treated as stale, so a
// request never leaves with a token about to die in flight.
const refreshMargin = 60 * time.Second

// tokenSource manages the QPay OAuth2 token pair. The mutex makes refresh
// single-flight: concurrent callers hitting a stale token produce exactly one
// auth round trip.
type tokenSource struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	now        func() time.Time

	mu            sync.Mutex
	token         *oauth2.Token
	refreshExpiry time.Time
}

func newTokenSource(baseURL, username, password string, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a token valid for at least the refresh margin, fetching or
// refreshing as needed.
func (s *tokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.now().Add(refreshMargin).Before(s.token.Expiry) {
		return s.token, nil
	}

	// Prefer the refresh grant while the refresh token is alive.
	if s.token != nil && s.token.RefreshToken != "" && s.now().Before(s.refreshExpiry) {
		if token, err := s.grant(ctx, "/auth/refresh", map[string]string{
			"refresh_token": s.token.RefreshToken,
		}); err == nil {
			return token, nil
		}
		// Refresh failed; fall through to a full re-auth.
	}

	return s.grant(ctx, "/auth/token", map[string]string{
		"username": s.username,
		"password": s.password,
	})
}

// Invalidate drops the cached pair so the next call re-authenticates.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

// grant runs one auth round trip and installs the returned pair. Callers must
// hold the mutex.
func (s *tokenSource) grant(ctx context.Context, path string, payload map[string]string) (*oauth2.Token, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperror.NewTransportError("payment gateway auth is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewTransportError("reading gateway auth response failed")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewAuthError("payment gateway rejected credentials")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, apperror.NewRemoteError("gateway auth response was unreadable")
	}
	if tr.AccessToken == "" {
		return nil, apperror.NewRemoteError("gateway auth response did not contain a token")
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	s.token = &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tokenType,
		RefreshToken: tr.RefreshToken,
		Expiry:       s.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	s.refreshExpiry = s.now().Add(time.Duration(tr.RefreshExpiresIn) * time.Second)
	return s.token, nil
}
