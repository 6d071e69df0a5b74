package model

const (
	Domain       = "seafile"
	Manufacturer = "Seafile Ltd."
	Attribution  = "Data provided by Seafile"
)

// EntityCategory marks entities that are not primary readings.
type EntityCategory string

const (
	CategoryNone       EntityCategory = ""
	CategoryDiagnostic EntityCategory = "diagnostic"
)

// DeviceInfo groups all entities of one account under a single service.
type DeviceInfo struct {
	EntryType        string      `json:"entry_type"`
	Identifiers      [][2]string `json:"identifiers"`
	Name             string      `json:"name"`
	Manufacturer     string      `json:"manufacturer"`
	SWVersion        string      `json:"sw_version,omitempty"`
	ConfigurationURL string      `json:"configuration_url"`
}

// NewDeviceInfo describes the account username on the server at url.
func NewDeviceInfo(username, url, version string) DeviceInfo {
	return DeviceInfo{
		EntryType:        "service",
		Identifiers:      [][2]string{{Domain, username}},
		Name:             username,
		Manufacturer:     Manufacturer,
		SWVersion:        version,
		ConfigurationURL: url,
	}
}

// SensorDescription is the immutable definition of one sensor. When
// RepositoryCode is set the value is read from that repository's CustomKey
// field, otherwise from the snapshot key Key.
type SensorDescription struct {
	Key              string         `json:"key"`
	Name             string         `json:"name"`
	Icon             string         `json:"icon"`
	Unit             string         `json:"unit"`
	StateClass       string         `json:"state_class"`
	Category         EntityCategory `json:"entity_category,omitempty"`
	EnabledByDefault bool           `json:"enabled_by_default"`
	Device           DeviceInfo     `json:"device_info"`
	RepositoryCode   string         `json:"repository_code,omitempty"`
	CustomKey        string         `json:"custom_key,omitempty"`
}

// ResolveValue reads the value this sensor reports from s.
func (d SensorDescription) ResolveValue(s Snapshot) (any, bool) {
	if d.RepositoryCode != "" {
		repo, ok := s.Repositories[d.RepositoryCode]
		if !ok {
			return nil, false
		}
		return repo.Field(d.CustomKey)
	}
	return s.Value(d.Key)
}
