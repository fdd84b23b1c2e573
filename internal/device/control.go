package device

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
)

// Controller switches and dims devices by instance ID.
type Controller struct {
	gateway Gateway
}

// NewController creates a Controller over gw.
func NewController(gw Gateway) *Controller {
	return &Controller{gateway: gw}
}

// Switch turns a light or plug on or off and returns the device's kind.
func (c *Controller) Switch(ctx context.Context, instanceID int, on bool) (Kind, error) {
	h, raw, err := c.lookup(ctx, instanceID)
	if err != nil {
		return KindUnknown, err
	}

	switch raw.Type {
	case gateway.AccessoryLight:
		return KindLight, h.SetLight(ctx, instanceID, gateway.LightCommand{OnOff: &on})
	case gateway.AccessoryPlug:
		return KindPlug, h.SetPlug(ctx, instanceID, on)
	default:
		return KindUnknown, fmt.Errorf("%w: device %d", ErrNotControllable, instanceID)
	}
}

// Dim sets a light's brightness as a percentage. Zero turns the light off.
func (c *Controller) Dim(ctx context.Context, instanceID, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidLevel
	}

	h, raw, err := c.lookup(ctx, instanceID)
	if err != nil {
		return err
	}
	if raw.Type != gateway.AccessoryLight {
		return fmt.Errorf("%w: device %d is not a light", ErrNotControllable, instanceID)
	}

	level := (percent*gateway.MaxDimmer + 50) / 100
	on := level > 0
	return h.SetLight(ctx, instanceID, gateway.LightCommand{OnOff: &on, Dimmer: &level})
}

func (c *Controller) lookup(ctx context.Context, instanceID int) (*gateway.Handle, gateway.RawDevice, error) {
	h, err := c.gateway.Connect(ctx)
	if err != nil {
		return nil, gateway.RawDevice{}, err
	}
	if err := c.gateway.ObserveDevices(h); err != nil {
		return nil, gateway.RawDevice{}, err
	}
	if err := h.WaitSettled(ctx); err != nil {
		return nil, gateway.RawDevice{}, fmt.Errorf("waiting for device state: %w", err)
	}

	raw, err := h.Device(instanceID)
	if err != nil {
		return nil, gateway.RawDevice{}, err
	}
	return h, raw, nil
}
