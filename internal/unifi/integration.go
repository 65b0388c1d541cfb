package unifi

// The integration API (/proxy/network/integration/v1) is the only surface
// that enumerates sites when authenticating with an API key. Its records
// are shaped differently from the legacy API, so each record type carries a
// conversion into the canonical model.

// integrationResponse is the paginated envelope of the integration API
type integrationResponse[T any] struct {
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
	Data       []T `json:"data"`
}

// IntegrationSite is a site record as returned by the integration API
type IntegrationSite struct {
	ID                string `json:"id"`
	InternalReference string `json:"internalReference"`
	Name              string `json:"name"`
}

// Site maps the record into the canonical model. The internal reference is
// the short site name the legacy API uses; the display name becomes the
// description.
func (s IntegrationSite) Site() Site {
	return Site{
		ID:          s.ID,
		Name:        s.InternalReference,
		Description: s.Name,
	}
}

// IntegrationDevice is a device record as returned by the integration API.
// It is a much thinner view than /stat/device: no firmware version, uptime
// or system stats.
type IntegrationDevice struct {
	ID         string   `json:"id"`
	Name       *string  `json:"name"`
	Model      string   `json:"model"`
	MACAddress string   `json:"macAddress"`
	IPAddress  *string  `json:"ipAddress"`
	State      string   `json:"state"`
	Features   []string `json:"features"`
	Interfaces []string `json:"interfaces"`
}

// Device maps the record into the canonical model
func (d IntegrationDevice) Device() Device {
	deviceType := "unknown"
	if len(d.Features) > 0 {
		deviceType = d.Features[0]
	}

	state := 0
	if d.State == "ONLINE" {
		state = 1
	}

	model := d.Model
	return Device{
		ID:      d.ID,
		Name:    d.Name,
		MAC:     d.MACAddress,
		Type:    deviceType,
		Model:   &model,
		Adopted: d.State == "ONLINE",
		State:   state,
	}
}

// IntegrationClient is a client record as returned by the integration API
type IntegrationClient struct {
	Type           string       `json:"type"`
	ID             string       `json:"id"`
	Name           *string      `json:"name"`
	ConnectedAt    string       `json:"connectedAt"`
	IPAddress      *string      `json:"ipAddress"`
	MACAddress     string       `json:"macAddress"`
	UplinkDeviceID *string      `json:"uplinkDeviceId"`
	Access         ClientAccess `json:"access"`
}

// ClientAccess describes how a client was admitted to the network
type ClientAccess struct {
	Type string `json:"type"`
}

// Station maps the record into the canonical model
func (c IntegrationClient) Station() Station {
	return Station{
		ID:       c.ID,
		MAC:      c.MACAddress,
		IP:       c.IPAddress,
		Hostname: c.Name,
		Name:     c.Name,
		ApMAC:    c.UplinkDeviceID,
		IsWired:  c.Type == "WIRED",
		IsGuest:  c.Access.Type == "GUEST",
	}
}
