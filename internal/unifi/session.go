package unifi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// authMethod selects which of the two controller API surfaces we talk to.
// Exactly two variants exist and the choice is fixed for the process
// lifetime.
type authMethod int

const (
	authAPIKey authMethod = iota
	authUserPass
)

// session owns the credentials and the live authentication state for one
// controller. For API-key auth there is no state: the key rides along on
// every request. For username/password auth it performs the legacy cookie
// login lazily and caches the resulting token until a 401 invalidates it.
type session struct {
	method   authMethod
	apiKey   string
	username string
	password string

	http     *http.Client
	loginURL string
	logger   Logger

	mu sync.Mutex
	// semicolon-joined Set-Cookie values from the last login, empty means
	// "must log in before next use"
	cookies string
}

func newSession(apiKey, username, password string) (*session, error) {
	switch {
	case apiKey != "":
		return &session{method: authAPIKey, apiKey: apiKey}, nil
	case username != "" && password != "":
		return &session{method: authUserPass, username: username, password: password}, nil
	default:
		return nil, fmt.Errorf("either API key or username/password must be provided")
	}
}

// ensureValid makes sure a request attached via attach() will carry usable
// credentials. For API-key auth this is a no-op. For password auth it logs
// in when no session token is held.
func (s *session) ensureValid(ctx context.Context) error {
	if s.method == authAPIKey {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cookies != "" {
		return nil
	}
	return s.loginLocked(ctx)
}

// login performs a fresh cookie login regardless of current state
func (s *session) login(ctx context.Context) error {
	if s.method == authAPIKey {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginLocked(ctx)
}

// loginLocked issues the login POST and stores the session token.
// Caller holds s.mu.
func (s *session) loginLocked(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{
		Username: s.username,
		Password: s.password,
		Remember: false,
	})
	if err != nil {
		return err
	}

	s.logger.Debugf("Logging in to %s as %s", s.loginURL, s.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Reason: fmt.Sprintf("login failed with status: %d", resp.StatusCode)}
	}

	// A successful login without cookies is indistinguishable from a
	// misconfigured controller, so treat it as a hard failure.
	cookies := resp.Header.Values("Set-Cookie")
	if len(cookies) == 0 {
		return &AuthError{Reason: "no cookies received from login response"}
	}

	s.cookies = strings.Join(cookies, "; ")
	s.logger.Debugf("Login succeeded, %d session cookie(s) stored", len(cookies))
	return nil
}

// invalidate drops the held session token so the next request logs in
// again. Idempotent, and a no-op for API-key auth.
func (s *session) invalidate() {
	if s.method == authAPIKey {
		return
	}

	s.mu.Lock()
	s.cookies = ""
	s.mu.Unlock()
}

// attach adds the auth context to an outgoing request: the API key as the
// X-API-KEY header, or the session token as the Cookie header. Call only
// after ensureValid.
func (s *session) attach(req *http.Request) {
	switch s.method {
	case authAPIKey:
		req.Header.Set("X-API-KEY", s.apiKey)
	case authUserPass:
		s.mu.Lock()
		if s.cookies != "" {
			req.Header.Set("Cookie", s.cookies)
		}
		s.mu.Unlock()
	}
}
