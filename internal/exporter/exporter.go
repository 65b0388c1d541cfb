package exporter

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fbettag/unifi-exporter/internal/metrics"
	"github.com/fbettag/unifi-exporter/internal/unifi"
)

// Exporter drives the fixed-interval poll loop: authenticate, fetch the
// three collections, hand them to the metrics store. A failed cycle is
// logged and the loop carries on to the next tick; nothing short of Stop
// terminates it.
type Exporter struct {
	client   *unifi.Client
	store    *metrics.Store
	interval time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// New creates an exporter polling the given client at the given interval
func New(client *unifi.Client, store *metrics.Store, interval time.Duration, logger *logrus.Logger) *Exporter {
	return &Exporter{
		client:   client,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until Stop is called or ctx is canceled. The first poll fires
// immediately, then once per interval tick. Slow cycles delay the next
// tick rather than overlapping it.
func (e *Exporter) Run(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.mu.Unlock()

	e.logger.Infof("Polling UniFi controller every %s", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.pollOnce(ctx)

	for {
		select {
		case <-ticker.C:
			e.pollOnce(ctx)
		case <-e.stop:
			e.logger.Info("Stopping poll loop")
			return
		case <-ctx.Done():
			e.logger.Info("Stopping poll loop")
			return
		}
	}
}

// Stop ends the poll loop
func (e *Exporter) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		close(e.stop)
		e.running = false
	}
}

// pollOnce performs one full authenticate-fetch-reconcile cycle
func (e *Exporter) pollOnce(ctx context.Context) {
	e.logger.Debug("Polling UniFi controller")

	if err := e.poll(ctx); err != nil {
		e.logger.Errorf("Failed to poll UniFi data: %v", err)
		return
	}

	e.logger.Debug("Successfully updated metrics")
}

func (e *Exporter) poll(ctx context.Context) error {
	if err := e.client.EnsureAuthenticated(ctx); err != nil {
		return err
	}

	devices, err := e.client.GetDevices(ctx)
	if err != nil {
		return err
	}
	clients, err := e.client.GetClients(ctx)
	if err != nil {
		return err
	}
	sites, err := e.client.GetSites(ctx)
	if err != nil {
		return err
	}

	e.store.UpdateDevices(devices)
	e.store.UpdateClients(clients)
	e.store.UpdateSites(sites)

	return nil
}
