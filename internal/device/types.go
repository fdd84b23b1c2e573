package device

// Kind classifies a device for rendering.
type Kind string

const (
	KindRemote  Kind = "remote"
	KindSensor  Kind = "sensor"
	KindLight   Kind = "light"
	KindPlug    Kind = "plug"
	KindUnknown Kind = "unknown"
)

// Snapshot is the normalized view of one device for a single listing.
// Unset pointers mean the gateway did not report the value.
type Snapshot struct {
	InstanceID     int     `json:"instance_id"`
	Name           string  `json:"name"`
	Kind           Kind    `json:"kind"`
	BatteryPercent *int    `json:"battery_percent,omitempty"`
	OnOff          *bool   `json:"on_off,omitempty"`
	ColorHex       *string `json:"color_hex,omitempty"`
	DimmerLevel    *int    `json:"dimmer_level,omitempty"`
	Spectrum       *string `json:"spectrum,omitempty"`

	// Note is the member-entered annotation, merged in at listing time.
	Note string `json:"note,omitempty"`
}
