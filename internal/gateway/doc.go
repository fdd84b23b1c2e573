// Package gateway is the client side of the lighting gateway.
//
// The gateway mirrors its device tree onto MQTT: one retained JSON record per
// device under {prefix}/device/{instance_id}. A Handle holds the latest raw
// record per device and decodes records only when asked, so a device that
// is never listed is never parsed.
//
// There is one Handle per Client. Connect establishes it lazily and is safe
// to call from concurrent requests; ObserveDevices subscribes once per Handle
// and the subscription lives as long as the process. Because the broker
// replays retained records asynchronously after subscribing, callers wait
// on Handle.WaitSettled before enumerating devices.
package gateway
