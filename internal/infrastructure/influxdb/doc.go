// Package influxdb records device-state telemetry to InfluxDB v2.
//
// Every device listing produces one point per classified device in the
// "device_state" measurement, tagged by instance ID and kind. Writes are
// non-blocking and batched by the client library; failures surface through
// SetOnError.
//
// Recording is optional. When influxdb.enabled is false, Connect returns
// ErrDisabled and callers run without a recorder.
package influxdb
