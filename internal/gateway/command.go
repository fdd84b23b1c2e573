package gateway

import (
	"context"
	"encoding/json"
	"fmt"
)

// MaxDimmer is the gateway's full-brightness dimmer value.
const MaxDimmer = 254

// LightCommand changes a light's first channel. Nil fields are left as they are.
type LightCommand struct {
	OnOff  *bool   `json:"on,omitempty"`
	Dimmer *int    `json:"dimmer,omitempty"`
	Color  *string `json:"color,omitempty"`
}

type plugCommand struct {
	OnOff bool `json:"on"`
}

// SetLight publishes cmd to the light's command topic.
func (h *Handle) SetLight(ctx context.Context, id int, cmd LightCommand) error {
	if cmd.Dimmer != nil && (*cmd.Dimmer < 0 || *cmd.Dimmer > MaxDimmer) {
		return fmt.Errorf("%w: dimmer %d outside 0..%d", ErrInvalidCommand, *cmd.Dimmer, MaxDimmer)
	}
	if cmd.OnOff == nil && cmd.Dimmer == nil && cmd.Color == nil {
		return fmt.Errorf("%w: empty light command", ErrInvalidCommand)
	}
	return h.publish(ctx, id, cmd)
}

// SetPlug switches a plug on or off.
func (h *Handle) SetPlug(ctx context.Context, id int, on bool) error {
	return h.publish(ctx, id, plugCommand{OnOff: on})
}

func (h *Handle) publish(ctx context.Context, id int, cmd any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	topic := h.client.topics.DeviceCommand(id)
	if err := h.transport.Publish(topic, payload, h.client.qos, false); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
