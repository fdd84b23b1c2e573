package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusTopic carries this service's retained online/offline status.
const StatusTopic = "graylogic/chatops/status"

// Topics builds gateway topics under a configurable prefix.
//
//	t := mqtt.Topics{Prefix: "tradfri"}
//	t.DeviceState(65537)   // "tradfri/device/65537"
//	t.AllDeviceStates()    // "tradfri/device/+"
type Topics struct {
	Prefix string
}

// DeviceState returns the retained state topic for one device.
func (t Topics) DeviceState(instanceID int) string {
	return fmt.Sprintf("%s/device/%d", t.Prefix, instanceID)
}

// AllDeviceStates returns the wildcard matching every device state topic.
func (t Topics) AllDeviceStates() string {
	return t.Prefix + "/device/+"
}

// DeviceCommand returns the command topic for one device.
func (t Topics) DeviceCommand(instanceID int) string {
	return fmt.Sprintf("%s/command/%d", t.Prefix, instanceID)
}

// ParseDeviceStateTopic extracts the instance ID from a device state topic.
// ok is false when topic is not a device state topic under t.Prefix.
func (t Topics) ParseDeviceStateTopic(topic string) (instanceID int, ok bool) {
	rest, found := strings.CutPrefix(topic, t.Prefix+"/device/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}
