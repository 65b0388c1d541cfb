package unifi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Device represents a managed UniFi appliance (access point, switch, gateway)
type Device struct {
	ID       string       `json:"_id"`
	Name     *string      `json:"name"`
	MAC      string       `json:"mac"`
	Type     string       `json:"type"`
	Model    *string      `json:"model"`
	Version  *string      `json:"version"`
	Adopted  bool         `json:"adopted"`
	State    int          `json:"state"`
	Uptime   *int64       `json:"uptime"`
	SysStats *SysStats    `json:"sys_stats"`
	Stat     *DeviceStats `json:"stat"`
}

// SysStats holds per-device system statistics. Controllers report the load
// averages as JSON strings, hence FlexFloat.
type SysStats struct {
	LoadAvg1  *FlexFloat `json:"loadavg_1"`
	LoadAvg5  *FlexFloat `json:"loadavg_5"`
	LoadAvg15 *FlexFloat `json:"loadavg_15"`
	MemTotal  *int64     `json:"mem_total"`
	MemUsed   *int64     `json:"mem_used"`
}

// DeviceStats holds cumulative traffic counters as reported by the controller
type DeviceStats struct {
	Bytes     *int64 `json:"bytes"`
	TxBytes   *int64 `json:"tx_bytes"`
	RxBytes   *int64 `json:"rx_bytes"`
	TxPackets *int64 `json:"tx_packets"`
	RxPackets *int64 `json:"rx_packets"`
}

// Station represents a client device connected to the network, wired or
// wireless (the controller calls these "sta")
type Station struct {
	ID       string  `json:"_id"`
	MAC      string  `json:"mac"`
	IP       *string `json:"ip"`
	Hostname *string `json:"hostname"`
	Name     *string `json:"name"`
	Network  *string `json:"network"`
	VLAN     *int    `json:"vlan"`
	ApMAC    *string `json:"ap_mac"`
	Signal   *int    `json:"signal"`
	TxBytes  *int64  `json:"tx_bytes"`
	RxBytes  *int64  `json:"rx_bytes"`
	Uptime   *int64  `json:"uptime"`
	IsWired  bool    `json:"is_wired"`
	IsGuest  bool    `json:"is_guest"`
}

// Site represents a UniFi site
type Site struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"desc"`
	HiddenID    *string `json:"attr_hidden_id"`
	NoDelete    *bool   `json:"attr_no_delete"`
}

// meta is the status portion of the legacy API envelope
type meta struct {
	RC string `json:"rc"`
}

// apiResponse is the {meta, data} envelope the controller wraps every
// legacy and proxied response in
type apiResponse[T any] struct {
	Meta meta `json:"meta"`
	Data []T  `json:"data"`
}

// loginRequest is the POST body for the legacy login endpoint
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// FlexFloat decodes a JSON number that some controller firmwares quote as a
// string (e.g. "loadavg_1": "0.52"). Same trick as the FlexInt type in
// unpoller/unifi.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Val returns the underlying float64
func (f *FlexFloat) Val() float64 {
	if f == nil {
		return 0
	}
	return float64(*f)
}

var _ json.Unmarshaler = (*FlexFloat)(nil)
