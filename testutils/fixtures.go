package testutils

import "github.com/fbettag/unifi-exporter/internal/unifi"

// Pointer helpers for the canonical model's optional fields

func StrPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }

func Int64Ptr(i int64) *int64 { return &i }

func BoolPtr(b bool) *bool { return &b }

func FloatPtr(f float64) *unifi.FlexFloat {
	v := unifi.FlexFloat(f)
	return &v
}

// SampleDevices returns a device collection exercising every optional
// field at least once
func SampleDevices() []unifi.Device {
	return []unifi.Device{
		{
			ID:      "device1",
			Name:    StrPtr("Office AP"),
			MAC:     "aa:bb:cc:dd:ee:ff",
			Type:    "uap",
			Model:   StrPtr("UAP-AC-Pro"),
			Version: StrPtr("4.3.20"),
			Adopted: true,
			State:   1,
			Uptime:  Int64Ptr(86400),
			SysStats: &unifi.SysStats{
				LoadAvg1:  FloatPtr(1.5),
				LoadAvg5:  FloatPtr(1.2),
				LoadAvg15: FloatPtr(1.0),
				MemTotal:  Int64Ptr(1000),
				MemUsed:   Int64Ptr(750),
			},
			Stat: &unifi.DeviceStats{
				TxBytes:   Int64Ptr(1024000),
				RxBytes:   Int64Ptr(2048000),
				TxPackets: Int64Ptr(1000),
				RxPackets: Int64Ptr(2000),
			},
		},
		{
			// Bare device: no name, model, version or stats
			ID:    "device2",
			MAC:   "11:22:33:44:55:66",
			Type:  "usw",
			State: 0,
		},
	}
}

// SampleStations returns one wired non-guest, one wireless guest and one
// wireless non-guest client
func SampleStations() []unifi.Station {
	return []unifi.Station{
		{
			ID:       "client1",
			MAC:      "aa:bb:cc:00:00:01",
			Hostname: StrPtr("desk-pc"),
			IP:       StrPtr("192.168.1.100"),
			Network:  StrPtr("LAN"),
			TxBytes:  Int64Ptr(1000),
			RxBytes:  Int64Ptr(2000),
			Uptime:   Int64Ptr(3600),
			IsWired:  true,
		},
		{
			ID:       "client2",
			MAC:      "aa:bb:cc:00:00:02",
			Hostname: StrPtr("guest-phone"),
			Network:  StrPtr("Guest"),
			ApMAC:    StrPtr("aa:bb:cc:dd:ee:ff"),
			Signal:   IntPtr(-65),
			IsGuest:  true,
		},
		{
			ID:      "client3",
			MAC:     "aa:bb:cc:00:00:03",
			Name:    StrPtr("Laptop"),
			Network: StrPtr("LAN"),
			ApMAC:   StrPtr("aa:bb:cc:dd:ee:ff"),
			Signal:  IntPtr(-50),
			Uptime:  Int64Ptr(120),
		},
	}
}

// SampleSites returns two legacy-API site records
func SampleSites() []unifi.Site {
	return []unifi.Site{
		{ID: "site1", Name: "default", Description: "Default Site"},
		{ID: "site2", Name: "branch", Description: "Branch Office", HiddenID: StrPtr("hidden"), NoDelete: BoolPtr(true)},
	}
}

// SampleIntegrationSites returns two integration-API site records
func SampleIntegrationSites() []unifi.IntegrationSite {
	return []unifi.IntegrationSite{
		{ID: "88f7af54-98f8-306a-a1c7-c9349722b1f6", InternalReference: "default", Name: "Default Site"},
		{ID: "99a8bf65-aa09-417b-b2d8-da45a833c2a7", InternalReference: "branch", Name: "Branch Office"},
	}
}
