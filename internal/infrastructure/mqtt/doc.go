// Package mqtt connects the ChatOps service to the MQTT broker that fronts
// the lighting gateway.
//
// The gateway publishes one retained JSON record per device and accepts
// commands on a per-device topic:
//
//	{prefix}/device/{instance_id}    retained device records (gateway → us)
//	{prefix}/command/{instance_id}   device commands (us → gateway)
//	graylogic/chatops/status         our online/offline status (retained, LWT)
//
// Client wraps paho.mqtt.golang with:
//   - context-aware initial connect with auto-reconnect afterwards
//   - subscription tracking so handlers survive a reconnect
//   - panic recovery around message handlers
//   - Last Will and Testament so dashboards see an unexpected exit
//
// A Client is safe for concurrent use.
package mqtt
