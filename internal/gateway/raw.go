package gateway

// AccessoryType is the gateway's device class code.
type AccessoryType int

// Known accessory types. Other codes exist (repeaters, blinds) but are not
// classified by this service.
const (
	AccessoryRemote       AccessoryType = 0
	AccessoryLight        AccessoryType = 2
	AccessoryPlug         AccessoryType = 3
	AccessoryMotionSensor AccessoryType = 4
)

// RawDevice is a device record exactly as the gateway publishes it.
// Optional leaves are pointers so that absent and zero are distinguishable.
type RawDevice struct {
	Type       AccessoryType  `json:"type"`
	InstanceID int            `json:"instance_id"`
	Name       string         `json:"name"`
	DeviceInfo DeviceInfo     `json:"device_info"`
	LightList  []LightChannel `json:"light,omitempty"`
	PlugList   []PlugChannel  `json:"plug,omitempty"`
}

// DeviceInfo carries identity and power telemetry.
type DeviceInfo struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Firmware     string `json:"firmware,omitempty"`
	Battery      *int   `json:"battery,omitempty"`
}

// LightChannel is one controllable light on a device.
type LightChannel struct {
	OnOff    *bool   `json:"on,omitempty"`
	Color    *string `json:"color,omitempty"`
	Dimmer   *int    `json:"dimmer,omitempty"`
	Spectrum *string `json:"spectrum,omitempty"`
}

// PlugChannel is one switchable outlet on a device.
type PlugChannel struct {
	OnOff *bool `json:"on,omitempty"`
}
