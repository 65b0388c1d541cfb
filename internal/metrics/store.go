package metrics

import (
	"bytes"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/fbettag/unifi-exporter/internal/unifi"
)

// Store holds the current controller state as a Prometheus registry of
// labeled series. Each Update* call atomically replaces the label space of
// the affected metric families: entities that disappeared from the
// controller between polls stop being emitted instead of lingering at a
// stale value.
type Store struct {
	mu       sync.RWMutex
	registry *prometheus.Registry

	deviceInfo     *prometheus.GaugeVec
	deviceUptime   *prometheus.GaugeVec
	deviceAdopted  *prometheus.GaugeVec
	deviceState    *prometheus.GaugeVec
	deviceCPU      *prometheus.GaugeVec
	deviceMemUsage *prometheus.GaugeVec
	deviceMemTotal *prometheus.GaugeVec
	deviceBytes    *prometheus.CounterVec
	devicePackets  *prometheus.CounterVec

	clientInfo   *prometheus.GaugeVec
	clientBytes  *prometheus.CounterVec
	clientSignal *prometheus.GaugeVec
	clientUptime *prometheus.GaugeVec
	clientsTotal *prometheus.GaugeVec

	sitesTotal prometheus.Gauge
}

// NewStore creates the registry and registers every metric family
func NewStore() *Store {
	s := &Store{
		registry: prometheus.NewRegistry(),

		deviceInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_info",
			Help: "UniFi device information",
		}, []string{"id", "name", "mac", "type", "model", "version"}),

		deviceUptime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_uptime_seconds",
			Help: "Device uptime in seconds",
		}, []string{"id", "name", "mac"}),

		deviceAdopted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_adopted",
			Help: "Device adoption status (1=adopted, 0=not adopted)",
		}, []string{"id", "name", "mac"}),

		deviceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_state",
			Help: "Device state",
		}, []string{"id", "name", "mac"}),

		deviceCPU: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_cpu_usage",
			Help: "Device CPU usage (load average)",
		}, []string{"id", "name", "mac", "period"}),

		deviceMemUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_memory_usage_ratio",
			Help: "Device memory usage ratio",
		}, []string{"id", "name", "mac"}),

		deviceMemTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_device_memory_total_bytes",
			Help: "Device total memory in bytes",
		}, []string{"id", "name", "mac"}),

		deviceBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifi_device_bytes_total",
			Help: "Total bytes transferred",
		}, []string{"id", "name", "mac", "direction"}),

		devicePackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifi_device_packets_total",
			Help: "Total packets transferred",
		}, []string{"id", "name", "mac", "direction"}),

		clientInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_client_info",
			Help: "UniFi client information",
		}, []string{"id", "mac", "hostname", "name", "ip", "network", "ap_mac"}),

		clientBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifi_client_bytes_total",
			Help: "Total bytes transferred by client",
		}, []string{"id", "mac", "hostname", "direction"}),

		clientSignal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_client_signal_strength_dbm",
			Help: "Client WiFi signal strength in dBm",
		}, []string{"id", "mac", "hostname"}),

		clientUptime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_client_uptime_seconds",
			Help: "Client connection uptime in seconds",
		}, []string{"id", "mac", "hostname"}),

		clientsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unifi_clients_total",
			Help: "Total number of clients",
		}, []string{"type", "network", "is_guest"}),

		sitesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "unifi_sites_total",
			Help: "Total number of sites",
		}),
	}

	s.registry.MustRegister(
		s.deviceInfo, s.deviceUptime, s.deviceAdopted, s.deviceState,
		s.deviceCPU, s.deviceMemUsage, s.deviceMemTotal,
		s.deviceBytes, s.devicePackets,
		s.clientInfo, s.clientBytes, s.clientSignal, s.clientUptime,
		s.clientsTotal,
		s.sitesTotal,
	)

	return s
}

// UpdateDevices replaces every device series with fresh values from the
// given collection
func (s *Store) UpdateDevices(devices []unifi.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deviceInfo.Reset()
	s.deviceUptime.Reset()
	s.deviceAdopted.Reset()
	s.deviceState.Reset()
	s.deviceCPU.Reset()
	s.deviceMemUsage.Reset()
	s.deviceMemTotal.Reset()
	// The traffic counters are reset too, so the exposed value always
	// equals the controller's own counter reading from the latest poll.
	s.deviceBytes.Reset()
	s.devicePackets.Reset()

	for _, device := range devices {
		name := stringOr(device.Name, "unknown")
		model := stringOr(device.Model, "unknown")
		version := stringOr(device.Version, "unknown")

		s.deviceInfo.WithLabelValues(device.ID, name, device.MAC, device.Type, model, version).Set(1)

		if device.Uptime != nil {
			s.deviceUptime.WithLabelValues(device.ID, name, device.MAC).Set(float64(*device.Uptime))
		}

		adopted := 0.0
		if device.Adopted {
			adopted = 1
		}
		s.deviceAdopted.WithLabelValues(device.ID, name, device.MAC).Set(adopted)
		s.deviceState.WithLabelValues(device.ID, name, device.MAC).Set(float64(device.State))

		if stats := device.SysStats; stats != nil {
			if stats.LoadAvg1 != nil {
				s.deviceCPU.WithLabelValues(device.ID, name, device.MAC, "1m").Set(stats.LoadAvg1.Val())
			}
			if stats.LoadAvg5 != nil {
				s.deviceCPU.WithLabelValues(device.ID, name, device.MAC, "5m").Set(stats.LoadAvg5.Val())
			}
			if stats.LoadAvg15 != nil {
				s.deviceCPU.WithLabelValues(device.ID, name, device.MAC, "15m").Set(stats.LoadAvg15.Val())
			}

			if stats.MemUsed != nil && stats.MemTotal != nil {
				if *stats.MemTotal > 0 {
					ratio := float64(*stats.MemUsed) / float64(*stats.MemTotal)
					s.deviceMemUsage.WithLabelValues(device.ID, name, device.MAC).Set(ratio)
				}
				s.deviceMemTotal.WithLabelValues(device.ID, name, device.MAC).Set(float64(*stats.MemTotal))
			}
		}

		if stat := device.Stat; stat != nil {
			if stat.TxBytes != nil {
				s.deviceBytes.WithLabelValues(device.ID, name, device.MAC, "tx").Add(float64(*stat.TxBytes))
			}
			if stat.RxBytes != nil {
				s.deviceBytes.WithLabelValues(device.ID, name, device.MAC, "rx").Add(float64(*stat.RxBytes))
			}
			if stat.TxPackets != nil {
				s.devicePackets.WithLabelValues(device.ID, name, device.MAC, "tx").Add(float64(*stat.TxPackets))
			}
			if stat.RxPackets != nil {
				s.devicePackets.WithLabelValues(device.ID, name, device.MAC, "rx").Add(float64(*stat.RxPackets))
			}
		}
	}
}

// UpdateClients replaces every client series with fresh values from the
// given collection and recomputes the aggregate counts
func (s *Store) UpdateClients(clients []unifi.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientInfo.Reset()
	s.clientBytes.Reset()
	s.clientSignal.Reset()
	s.clientUptime.Reset()
	s.clientsTotal.Reset()

	var wired, wireless, guest int
	networks := make(map[string]int)

	for _, client := range clients {
		hostname := stringOr(client.Hostname, "")
		name := stringOr(client.Name, "")
		ip := stringOr(client.IP, "")
		network := stringOr(client.Network, "unknown")
		apMAC := stringOr(client.ApMAC, "")

		s.clientInfo.WithLabelValues(client.ID, client.MAC, hostname, name, ip, network, apMAC).Set(1)

		if client.TxBytes != nil {
			s.clientBytes.WithLabelValues(client.ID, client.MAC, hostname, "tx").Add(float64(*client.TxBytes))
		}
		if client.RxBytes != nil {
			s.clientBytes.WithLabelValues(client.ID, client.MAC, hostname, "rx").Add(float64(*client.RxBytes))
		}

		// Signal strength only means anything for wireless stations
		if !client.IsWired && client.Signal != nil {
			s.clientSignal.WithLabelValues(client.ID, client.MAC, hostname).Set(float64(*client.Signal))
		}

		if client.Uptime != nil {
			s.clientUptime.WithLabelValues(client.ID, client.MAC, hostname).Set(float64(*client.Uptime))
		}

		if client.IsWired {
			wired++
		} else {
			wireless++
		}
		if client.IsGuest {
			guest++
		}
		networks[network]++
	}

	s.clientsTotal.WithLabelValues("wired", "all", "false").Set(float64(wired))
	s.clientsTotal.WithLabelValues("wireless", "all", "false").Set(float64(wireless))
	s.clientsTotal.WithLabelValues("all", "all", "true").Set(float64(guest))
	s.clientsTotal.WithLabelValues("all", "all", "false").Set(float64(max(wired+wireless-guest, 0)))

	for network, count := range networks {
		s.clientsTotal.WithLabelValues("all", network, "all").Set(float64(count))
	}
}

// UpdateSites records the cardinality of the sites collection
func (s *Store) UpdateSites(sites []unifi.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sitesTotal.Set(float64(len(sites)))
}

// Snapshot renders the whole registry in the Prometheus text exposition
// format. Encoding a registry we built ourselves cannot fail at runtime;
// if it does, that is a bug, so panic rather than return an error.
func (s *Store) Snapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	families, err := s.registry.Gather()
	if err != nil {
		panic(err)
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			panic(err)
		}
	}
	return buf.String()
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
