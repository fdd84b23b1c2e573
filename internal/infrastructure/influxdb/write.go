package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// measurementDeviceState is the measurement every device point lands in.
const measurementDeviceState = "device_state"

// DeviceState is one observed device reading. Nil fields are omitted from the point.
type DeviceState struct {
	InstanceID     int
	Name           string
	Kind           string
	BatteryPercent *int
	OnOff          *bool
	DimmerLevel    *int
}

// WriteDeviceState queues a device reading. Readings with no fields are dropped,
// since InfluxDB rejects points without fields.
func (c *Client) WriteDeviceState(state DeviceState, at time.Time) {
	if !c.IsConnected() {
		return
	}
	if p := devicePoint(state, at); p != nil {
		c.writeAPI.WritePoint(p)
	}
}

func devicePoint(state DeviceState, at time.Time) *write.Point {
	fields := make(map[string]interface{}, 3)
	if state.BatteryPercent != nil {
		fields["battery_percent"] = int64(*state.BatteryPercent)
	}
	if state.OnOff != nil {
		fields["on"] = *state.OnOff
	}
	if state.DimmerLevel != nil {
		fields["dimmer"] = int64(*state.DimmerLevel)
	}
	if len(fields) == 0 {
		return nil
	}

	tags := map[string]string{
		"instance_id": strconv.Itoa(state.InstanceID),
		"kind":        state.Kind,
	}
	if state.Name != "" {
		tags["name"] = state.Name
	}

	return write.NewPoint(measurementDeviceState, tags, fields, at)
}
