package interaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// listDevices renders one page of the device list as a single reply.
// Gateway failures become error text in that reply.
func (h *Handlers) listDevices(ctx context.Context, page int, replace bool) render.Result {
	snapshots, err := h.Devices.Snapshots(ctx)
	if err != nil {
		h.Logger.Error("listing devices", "error", err)
		if errors.Is(err, ErrGatewayUnavailable) {
			return h.deviceError(gatewayMessage, replace)
		}
		return h.deviceError(render.GenericError, replace)
	}

	result := render.DeviceList(snapshots, page)
	if s, ok := result.(render.Structured); ok {
		s.Msg.ReplaceOriginal = replace
		return s
	}
	return result
}

func (h *Handlers) deviceError(text string, replace bool) render.Result {
	if replace {
		return render.Error(text)
	}
	return render.Ephemeral(":warning: " + text)
}

// devicesPage handles the previous and next buttons under a device list.
func (h *Handlers) devicesPage(ctx context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(ActionPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: page action without actions", ErrMalformedEvent)
	}
	action, ok := payload.First()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: page action without actions", ErrMalformedEvent)
	}

	page, err := strconv.Atoi(action.Value)
	if err != nil {
		page = 1
	}

	// Block actions ignore the response body; the page replaces the list
	// through the response URL.
	return Later(render.Deferred{}, func(ctx context.Context, push Pusher) error {
		return push.Push(ctx, h.listDevices(ctx, page, true))
	}), nil
}
