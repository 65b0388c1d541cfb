package unifi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config carries everything needed to talk to one controller. Exactly one
// of APIKey or User/Pass must be set.
type Config struct {
	URL       string
	APIKey    string
	User      string
	Pass      string
	Site      string
	Timeout   time.Duration
	VerifySSL bool
	Logger    Logger
}

// Client talks to a UniFi controller and normalizes both of its API
// surfaces (legacy cookie API, key-based proxy API) into the canonical
// device/client/site model.
type Client struct {
	http    *http.Client
	baseURL string
	site    string
	session *session
	logger  Logger
}

// NewClient creates a client for the controller described by cfg
func NewClient(cfg *Config) (*Client, error) {
	sess, err := newSession(cfg.APIKey, cfg.User, cfg.Pass)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger{}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifySSL}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}

	c := &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		site:    cfg.Site,
		session: sess,
		logger:  logger,
	}

	sess.http = httpClient
	sess.loginURL = c.baseURL + "/api/login"
	sess.logger = logger

	return c, nil
}

// EnsureAuthenticated logs in if the active auth method requires it and no
// session is held yet
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	return c.session.ensureValid(ctx)
}

// GetDevices returns the complete current device collection for the site
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	return getData[Device](ctx, c, c.sitePath("stat/device"))
}

// GetClients returns the complete current set of connected stations
func (c *Client) GetClients(ctx context.Context) ([]Station, error) {
	return getData[Station](ctx, c, c.sitePath("stat/sta"))
}

// GetSites returns all sites on the controller. The two auth methods use
// entirely different endpoints for this: the legacy root-level
// /api/self/sites, or the integration API whose records are remapped into
// the canonical Site shape.
func (c *Client) GetSites(ctx context.Context) ([]Site, error) {
	if c.session.method == authAPIKey {
		resp, err := c.do(ctx, c.baseURL+"/proxy/network/integration/v1/sites")
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var envelope integrationResponse[IntegrationSite]
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, &ParseError{Err: err}
		}

		sites := make([]Site, len(envelope.Data))
		for i, s := range envelope.Data {
			sites[i] = s.Site()
		}
		return sites, nil
	}

	return getData[Site](ctx, c, c.baseURL+"/api/self/sites")
}

// sitePath builds the site-scoped stat URL for the active auth method
func (c *Client) sitePath(path string) string {
	if c.session.method == authAPIKey {
		return fmt.Sprintf("%s/proxy/network/api/s/%s/%s", c.baseURL, c.site, path)
	}
	return fmt.Sprintf("%s/api/s/%s/%s", c.baseURL, c.site, path)
}

// getData fetches url and unwraps the {meta, data} envelope
func getData[T any](ctx context.Context, c *Client, url string) ([]T, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope apiResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ParseError{Err: err}
	}
	return envelope.Data, nil
}

// do issues an authenticated GET. A 401 under password auth triggers
// exactly one invalidate+login+retry; a second 401 is surfaced as an
// AuthError so a permanently broken endpoint cannot loop us through
// endless logins.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if err := c.session.ensureValid(ctx); err != nil {
		return nil, err
	}

	c.logger.Debugf("Making request to: %s", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.session.method == authUserPass {
		resp.Body.Close()
		c.logger.Debugf("Session rejected with 401, logging in again")

		c.session.invalidate()
		if err := c.session.login(ctx); err != nil {
			return nil, err
		}

		resp, err = c.get(ctx, url)
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return nil, &AuthError{Reason: "request unauthorized after re-login"}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status := resp.StatusCode
		resp.Body.Close()
		return nil, &ParseError{Status: status}
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.session.attach(req)
	return c.http.Do(req)
}
