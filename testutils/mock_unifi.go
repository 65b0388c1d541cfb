package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/fbettag/unifi-exporter/internal/unifi"
)

// MockController simulates a UniFi controller for testing: the legacy
// cookie-login API surface and the key-based proxy/integration surface.
type MockController struct {
	Server *httptest.Server
	URL    string

	// Expected credentials
	APIKey   string
	Username string
	Password string

	// Behavior knobs
	FailLogin  bool // login endpoint returns 401
	NoCookies  bool // login succeeds but sets no session cookie
	Reject401  int  // number of data requests to answer 401 before accepting
	BrokenJSON bool // data endpoints return undecodable bodies

	mu           sync.Mutex
	loginCount   int
	requestCount int

	Devices          []unifi.Device
	Stations         []unifi.Station
	Sites            []unifi.Site
	IntegrationSites []unifi.IntegrationSite
}

const sessionCookie = "unifises=mock-session-token"

// NewMockController creates a mock controller backed by an httptest TLS
// server
func NewMockController() *MockController {
	m := &MockController{
		APIKey:   "test-api-key",
		Username: "testuser",
		Password: "testpass",
	}

	mux := http.NewServeMux()

	// Legacy login endpoint
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Remember bool   `json:"remember"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.loginCount++
		failLogin := m.FailLogin
		noCookies := m.NoCookies
		m.mu.Unlock()

		if failLogin || creds.Username != m.Username || creds.Password != m.Password {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !noCookies {
			http.SetCookie(w, &http.Cookie{
				Name:  "unifises",
				Value: "mock-session-token",
				Path:  "/",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"meta": map[string]interface{}{"rc": "ok"},
			"data": []interface{}{},
		})
	})

	// Legacy site-scoped data endpoints (cookie auth)
	mux.HandleFunc("/api/s/", func(w http.ResponseWriter, r *http.Request) {
		if !m.authorizeCookie(w, r) {
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/stat/device"):
			m.writeEnvelope(w, m.Devices)
		case strings.HasSuffix(r.URL.Path, "/stat/sta"):
			m.writeEnvelope(w, m.Stations)
		default:
			http.NotFound(w, r)
		}
	})

	// Legacy root-level sites endpoint (cookie auth)
	mux.HandleFunc("/api/self/sites", func(w http.ResponseWriter, r *http.Request) {
		if !m.authorizeCookie(w, r) {
			return
		}
		m.writeEnvelope(w, m.Sites)
	})

	// Key-based proxied data endpoints
	mux.HandleFunc("/proxy/network/api/s/", func(w http.ResponseWriter, r *http.Request) {
		if !m.authorizeKey(w, r) {
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/stat/device"):
			m.writeEnvelope(w, m.Devices)
		case strings.HasSuffix(r.URL.Path, "/stat/sta"):
			m.writeEnvelope(w, m.Stations)
		default:
			http.NotFound(w, r)
		}
	})

	// Integration API sites endpoint (key auth, paginated envelope)
	mux.HandleFunc("/proxy/network/integration/v1/sites", func(w http.ResponseWriter, r *http.Request) {
		if !m.authorizeKey(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"offset":     0,
			"limit":      50,
			"count":      len(m.IntegrationSites),
			"totalCount": len(m.IntegrationSites),
			"data":       m.IntegrationSites,
		})
	})

	m.Server = httptest.NewTLSServer(mux)
	m.URL = m.Server.URL
	return m
}

// Close shuts down the mock server
func (m *MockController) Close() {
	m.Server.Close()
}

// LoginCount reports how many login attempts the controller has seen
func (m *MockController) LoginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCount
}

// RequestCount reports how many data requests the controller has seen
func (m *MockController) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// authorizeCookie enforces cookie auth on a legacy data request and
// applies the Reject401 countdown
func (m *MockController) authorizeCookie(w http.ResponseWriter, r *http.Request) bool {
	m.mu.Lock()
	m.requestCount++
	reject := m.Reject401 > 0
	if reject {
		m.Reject401--
	}
	m.mu.Unlock()

	if reject || !strings.Contains(r.Header.Get("Cookie"), sessionCookie) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// authorizeKey enforces the X-API-KEY header on a proxied data request
func (m *MockController) authorizeKey(w http.ResponseWriter, r *http.Request) bool {
	m.mu.Lock()
	m.requestCount++
	m.mu.Unlock()

	if r.Header.Get("X-API-KEY") != m.APIKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (m *MockController) writeEnvelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if m.BrokenJSON {
		_, _ = w.Write([]byte(`{"meta": {"rc": "ok"}, "data": "not-a-list"`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"meta": map[string]interface{}{"rc": "ok"},
		"data": data,
	})
}
