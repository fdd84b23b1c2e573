package device

import "github.com/nerrad567/gray-logic-chatops/internal/gateway"

// Normalize classifies raw and copies the fields its kind reports.
// It returns nil for accessory types that are not rendered.
// raw is never modified and no pointer in the result aliases it.
func Normalize(raw gateway.RawDevice) *Snapshot {
	s := &Snapshot{InstanceID: raw.InstanceID, Name: raw.Name}

	switch raw.Type {
	case gateway.AccessoryRemote:
		s.Kind = KindRemote
		s.BatteryPercent = cloneInt(raw.DeviceInfo.Battery)
	case gateway.AccessoryMotionSensor:
		s.Kind = KindSensor
		s.BatteryPercent = cloneInt(raw.DeviceInfo.Battery)
	case gateway.AccessoryLight:
		s.Kind = KindLight
		if len(raw.LightList) > 0 {
			ch := raw.LightList[0]
			s.OnOff = cloneBool(ch.OnOff)
			s.Spectrum = cloneString(ch.Spectrum)
			s.DimmerLevel = cloneInt(ch.Dimmer)
			s.ColorHex = cloneString(ch.Color)
		}
	case gateway.AccessoryPlug:
		s.Kind = KindPlug
		if len(raw.PlugList) > 0 {
			s.OnOff = cloneBool(raw.PlugList[0].OnOff)
		}
	default:
		return nil
	}
	return s
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
