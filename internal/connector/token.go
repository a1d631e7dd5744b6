package connector

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTokenURL is the Bot Framework identity provider token endpoint.
const DefaultTokenURL = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"

// tokenScope is the fixed scope requested for connector calls.
const tokenScope = "https://api.botframework.com/.default"

type token struct {
	accessToken string
	expiresAt   time.Time
}

// TokenSource caches one OAuth client-credentials token and replaces it
// wholesale when it expires. Concurrent callers share a single in-flight
// refresh.
type TokenSource struct {
	client    *http.Client
	tokenURL  string
	appID     string
	appSecret string

	group singleflight.Group
	mu    sync.RWMutex
	cur   token
	now   func() time.Time
}

func NewTokenSource(client *http.Client, tokenURL, appID, appSecret string) *TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &TokenSource{
		client:    client,
		tokenURL:  tokenURL,
		appID:     appID,
		appSecret: appSecret,
		now:       time.Now,
	}
}

// Token returns a valid bearer token, refreshing the cache if the current one
// has expired. A token is never handed out past its expiry.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()
	if cur.accessToken != "" && s.now().Before(cur.expiresAt) {
		return cur.accessToken, nil
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		s.mu.RLock()
		cur := s.cur
		s.mu.RUnlock()
		if cur.accessToken != "" && s.now().Before(cur.expiresAt) {
			return cur.accessToken, nil
		}
		fresh, err := s.fetch(ctx)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.cur = fresh
		s.mu.Unlock()
		return fresh.accessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Cached reports whether an unexpired token is currently held.
func (s *TokenSource) Cached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.accessToken != "" && s.now().Before(s.cur.expiresAt)
}

func (s *TokenSource) fetch(ctx context.Context) (token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", tokenScope)
	form.Set("client_id", s.appID)
	form.Set("client_secret", s.appSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return token{}, &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return token{}, &AuthError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		slog.Warn("token request rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return token{}, &AuthError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return token{}, &AuthError{Err: err}
	}
	if out.AccessToken == "" {
		return token{}, &AuthError{Status: resp.StatusCode, Body: "token response missing access_token"}
	}
	return token{
		accessToken: out.AccessToken,
		expiresAt:   s.now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}
