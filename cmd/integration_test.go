package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fbettag/unifi-exporter/internal/exporter"
	"github.com/fbettag/unifi-exporter/internal/handlers"
	"github.com/fbettag/unifi-exporter/internal/metrics"
	"github.com/fbettag/unifi-exporter/internal/unifi"
	"github.com/fbettag/unifi-exporter/testutils"
)

type pipeline struct {
	mock   *testutils.MockController
	store  *metrics.Store
	exp    *exporter.Exporter
	server *httptest.Server
}

func setupPipeline(t *testing.T, cfg *unifi.Config) *pipeline {
	t.Helper()

	mock := testutils.NewMockController()
	mock.Devices = testutils.SampleDevices()
	mock.Stations = testutils.SampleStations()
	mock.Sites = testutils.SampleSites()
	mock.IntegrationSites = testutils.SampleIntegrationSites()

	cfg.URL = mock.URL
	cfg.Site = "default"
	cfg.Timeout = 5 * time.Second
	cfg.VerifySSL = false

	client, err := unifi.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := metrics.NewStore()
	app := &handlers.App{Store: store, Logger: logger}

	p := &pipeline{
		mock:   mock,
		store:  store,
		exp:    exporter.New(client, store, time.Minute, logger),
		server: httptest.NewServer(app.Routes()),
	}
	t.Cleanup(func() {
		p.server.Close()
		p.mock.Close()
	})
	return p
}

func (p *pipeline) scrape(t *testing.T) string {
	t.Helper()

	resp, err := http.Get(p.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read scrape body: %v", err)
	}
	return string(body)
}

func waitForSeries(t *testing.T, p *pipeline, series string) string {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		body := p.scrape(t)
		if strings.Contains(body, series) {
			return body
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for series %q\n%s", series, body)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEndToEndPasswordAuth(t *testing.T) {
	p := setupPipeline(t, &unifi.Config{User: "testuser", Pass: "testpass"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.exp.Run(ctx)
	defer p.exp.Stop()

	body := waitForSeries(t, p, `unifi_device_info{id="device1"`)

	for _, want := range []string{
		`unifi_device_info{id="device2",mac="11:22:33:44:55:66",model="unknown",name="unknown",type="usw",version="unknown"} 1`,
		`unifi_device_memory_usage_ratio{id="device1",mac="aa:bb:cc:dd:ee:ff",name="Office AP"} 0.75`,
		`unifi_client_signal_strength_dbm{hostname="guest-phone",id="client2",mac="aa:bb:cc:00:00:02"} -65`,
		`unifi_clients_total{is_guest="false",network="all",type="wired"} 1`,
		`unifi_clients_total{is_guest="false",network="all",type="wireless"} 2`,
		"unifi_sites_total 2",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Scrape missing %q", want)
		}
	}

	if n := p.mock.LoginCount(); n != 1 {
		t.Errorf("Expected a single login, got %d", n)
	}
}

func TestEndToEndAPIKeyAuth(t *testing.T) {
	p := setupPipeline(t, &unifi.Config{APIKey: "test-api-key"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.exp.Run(ctx)
	defer p.exp.Stop()

	body := waitForSeries(t, p, `unifi_device_info{id="device1"`)

	if !strings.Contains(body, "unifi_sites_total 2") {
		t.Error("Scrape missing site count from the integration API")
	}
	if n := p.mock.LoginCount(); n != 0 {
		t.Errorf("API key auth must not log in, got %d logins", n)
	}
}

func TestEndToEndSessionRecovery(t *testing.T) {
	p := setupPipeline(t, &unifi.Config{User: "testuser", Pass: "testpass"})
	p.mock.Reject401 = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.exp.Run(ctx)
	defer p.exp.Stop()

	waitForSeries(t, p, `unifi_device_info{id="device1"`)

	// Initial login plus the re-login triggered by the injected 401
	if n := p.mock.LoginCount(); n != 2 {
		t.Errorf("Expected 2 logins, got %d", n)
	}
}

func TestEndToEndHealthAndIndex(t *testing.T) {
	p := setupPipeline(t, &unifi.Config{APIKey: "test-api-key"})

	resp, err := http.Get(p.server.URL + "/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 from /health, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(p.server.URL + "/")
	if err != nil {
		t.Fatalf("Index request failed: %v", err)
	}
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(body), "UniFi Network Exporter") {
		t.Errorf("Unexpected index body: %s", body)
	}
}
