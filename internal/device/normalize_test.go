package device

import (
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
)

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestNormalize_Light(t *testing.T) {
	raw := gateway.RawDevice{
		Type:       gateway.AccessoryLight,
		InstanceID: 65537,
		Name:       "Desk lamp",
		LightList: []gateway.LightChannel{
			{OnOff: boolPtr(true), Color: strPtr("f1e0b5"), Dimmer: intPtr(128), Spectrum: strPtr("white")},
			{OnOff: boolPtr(false)},
		},
	}

	s := Normalize(raw)
	if s == nil {
		t.Fatal("Normalize(light) = nil")
	}
	if s.Kind != KindLight || s.InstanceID != 65537 || s.Name != "Desk lamp" {
		t.Errorf("identity = %+v", s)
	}
	if s.OnOff == nil || !*s.OnOff {
		t.Errorf("OnOff = %v, want true from first channel", s.OnOff)
	}
	if s.Spectrum == nil || *s.Spectrum != "white" {
		t.Errorf("Spectrum = %v, want white", s.Spectrum)
	}
	if s.DimmerLevel == nil || *s.DimmerLevel != 128 {
		t.Errorf("DimmerLevel = %v, want 128", s.DimmerLevel)
	}
	if s.ColorHex == nil || *s.ColorHex != "f1e0b5" {
		t.Errorf("ColorHex = %v, want f1e0b5", s.ColorHex)
	}
	if s.BatteryPercent != nil {
		t.Errorf("BatteryPercent = %v, want unset for light", *s.BatteryPercent)
	}
}

func TestNormalize_Kinds(t *testing.T) {
	tests := []struct {
		name string
		raw  gateway.RawDevice
		want *Snapshot
	}{
		{
			name: "remote reports battery",
			raw:  gateway.RawDevice{Type: gateway.AccessoryRemote, InstanceID: 1, Name: "Remote", DeviceInfo: gateway.DeviceInfo{Battery: intPtr(87)}},
			want: &Snapshot{InstanceID: 1, Name: "Remote", Kind: KindRemote, BatteryPercent: intPtr(87)},
		},
		{
			name: "motion sensor is a sensor",
			raw:  gateway.RawDevice{Type: gateway.AccessoryMotionSensor, InstanceID: 2, DeviceInfo: gateway.DeviceInfo{Battery: intPtr(12)}},
			want: &Snapshot{InstanceID: 2, Kind: KindSensor, BatteryPercent: intPtr(12)},
		},
		{
			name: "plug reports on-off",
			raw:  gateway.RawDevice{Type: gateway.AccessoryPlug, InstanceID: 3, PlugList: []gateway.PlugChannel{{OnOff: boolPtr(false)}}},
			want: &Snapshot{InstanceID: 3, Kind: KindPlug, OnOff: boolPtr(false)},
		},
		{
			name: "light without channels leaves fields unset",
			raw:  gateway.RawDevice{Type: gateway.AccessoryLight, InstanceID: 4},
			want: &Snapshot{InstanceID: 4, Kind: KindLight},
		},
		{
			name: "light with partial channel",
			raw:  gateway.RawDevice{Type: gateway.AccessoryLight, InstanceID: 5, LightList: []gateway.LightChannel{{Dimmer: intPtr(0)}}},
			want: &Snapshot{InstanceID: 5, Kind: KindLight, DimmerLevel: intPtr(0)},
		},
		{
			name: "remote without battery",
			raw:  gateway.RawDevice{Type: gateway.AccessoryRemote, InstanceID: 6},
			want: &Snapshot{InstanceID: 6, Kind: KindRemote},
		},
		{
			name: "signal repeater is skipped",
			raw:  gateway.RawDevice{Type: gateway.AccessoryType(6), InstanceID: 7},
			want: nil,
		},
		{
			name: "blind is skipped",
			raw:  gateway.RawDevice{Type: gateway.AccessoryType(7), InstanceID: 8},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	raw := gateway.RawDevice{
		Type:      gateway.AccessoryLight,
		LightList: []gateway.LightChannel{{OnOff: boolPtr(true), Dimmer: intPtr(10)}},
	}

	s := Normalize(raw)
	*s.OnOff = false
	*s.DimmerLevel = 99

	if !*raw.LightList[0].OnOff || *raw.LightList[0].Dimmer != 10 {
		t.Errorf("mutating the snapshot changed the raw record: %+v", raw.LightList[0])
	}
}
