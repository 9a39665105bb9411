package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client talks to the session store over HTTP.  Every request carries the
// anon API key; authenticated requests additionally carry the bearer access
// token of the current session.  The client keeps the current session in
// memory and mirrors it into an optional SessionCache so a restarted
// process can recover it, the way a browser tab recovers from local
// storage.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   SessionCache

	mu      sync.Mutex
	session *Session
}

// SessionCache persists the current session outside the process.  Load
// returns nil without error when nothing is stored.
type SessionCache interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// NewClient builds a store client.  cache may be nil, in which case the
// session lives only for the process lifetime.
func NewClient(baseURL, apiKey string, timeout time.Duration, cache SessionCache) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

// apiError is the wire shape of a session store failure response.
type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// GetSession returns the current session after revalidating it against the
// store.  ErrNoSession means nobody is signed in; ErrUnreachable means the
// store could not be asked.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil && c.cache != nil {
		cached, err := c.cache.Load(ctx)
		if err == nil && cached != nil {
			s = cached
		}
	}
	if s == nil {
		return nil, ErrNoSession
	}

	var u User
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, s.AccessToken, &u)
	if err != nil {
		if err == ErrUnreachable {
			return nil, ErrUnreachable
		}
		// Token rejected: the session is gone, drop it everywhere.
		c.setSession(ctx, nil)
		return nil, ErrNoSession
	}

	s.User = &u
	c.setSession(ctx, s)
	return s, nil
}

// SignUpWithPassword registers a new identity.  The profile row is the
// caller's concern; only the identity is created here.
func (c *Client) SignUpWithPassword(ctx context.Context, email, password string, meta SignUpMetadata) (*User, error) {
	body := map[string]any{"email": email, "password": password, "data": meta}
	var u User
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", body, "", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignInWithPassword exchanges credentials for a session.  Bad credentials
// and unconfirmed identities map to their own sentinels.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "", &s); err != nil {
		return nil, err
	}
	c.setSession(ctx, &s)
	return &s, nil
}

// SignOut revokes the current session.  The local copy is dropped even when
// the store call fails; a dangling refresh token is the store's problem,
// a dangling local session would be ours.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", map[string]any{"refresh_token": s.RefreshToken}, s.AccessToken, nil)
	c.setSession(ctx, nil)
	return err
}

// UpdateUser applies a partial update (password and/or metadata) to the
// signed-in identity.
func (c *Client) UpdateUser(ctx context.Context, patch UserPatch) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return ErrNoSession
	}
	var u User
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", patch, s.AccessToken, &u); err != nil {
		return err
	}
	s.User = &u
	c.setSession(ctx, s)
	return nil
}

// AccessToken returns the bearer token of the current session, or "" when
// anonymous.  The table API uses it to authenticate writes.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// ApplySession replaces the client's current session with one delivered by
// an auth-change notification.  nil clears it.
func (c *Client) ApplySession(ctx context.Context, s *Session) {
	c.setSession(ctx, s)
}

func (c *Client) setSession(ctx context.Context, s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	if c.cache == nil {
		return
	}
	if s == nil {
		_ = c.cache.Clear(ctx)
		return
	}
	_ = c.cache.Save(ctx, s)
}

// do performs one HTTP round trip and maps failures onto the sentinel
// errors.  out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var rd *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(bs)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ue, ok := err.(*url.Error); ok && ue.Timeout() {
			return ErrUnreachable
		}
		return ErrUnreachable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		switch ae.ErrorCode {
		case codeInvalidCredentials:
			return ErrInvalidCredentials
		case codeEmailUnconfirmed:
			return ErrEmailUnconfirmed
		case codeEmailExists:
			return ErrEmailExists
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrInvalidCredentials
		}
		if ae.Error != "" {
			return fmt.Errorf("session store: %s (status %d)", ae.Error, resp.StatusCode)
		}
		return fmt.Errorf("session store: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("session store: decode response: %w", err)
		}
	}
	return nil
}
