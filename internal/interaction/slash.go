package interaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// slashCommand dispatches on the first word of the command text.
func (h *Handlers) slashCommand(ctx context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(CommandPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: slash command without payload", ErrMalformedEvent)
	}

	args := strings.Fields(payload.Text)
	keyword := ""
	if len(args) > 0 {
		keyword = strings.ToLower(args[0])
		args = args[1:]
	}

	switch keyword {
	case "", "list":
		page := 1
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				page = n
			}
		}
		return Now(h.listDevices(ctx, page, false)), nil
	case "on", "off":
		return Now(h.switchDevice(ctx, keyword, args)), nil
	case "dim":
		return Now(h.dimDevice(ctx, args)), nil
	case "kudos":
		return h.openKudosDialog(ctx, ev), nil
	case "policy":
		return h.policyPrompt(ctx, ev)
	case "neighborhood":
		return Now(render.NeighborhoodMenu()), nil
	default:
		return Now(render.Usage(h.Command)), nil
	}
}

func (h *Handlers) switchDevice(ctx context.Context, keyword string, args []string) render.Result {
	if len(args) != 1 {
		return render.Ephemeral(fmt.Sprintf("Usage: `%s %s <id>`", h.Command, keyword))
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return render.Ephemeral(fmt.Sprintf("%q is not a device ID.", args[0]))
	}

	kind, err := h.Control.Switch(ctx, id, keyword == "on")
	if err != nil {
		return h.controlError(id, err)
	}
	return render.Ephemeral(fmt.Sprintf("Turned %s %s %d.", keyword, kind, id))
}

func (h *Handlers) dimDevice(ctx context.Context, args []string) render.Result {
	usage := render.Ephemeral(fmt.Sprintf("Usage: `%s dim <id> <0-100>`", h.Command))
	if len(args) != 2 {
		return usage
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return usage
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
	if err != nil {
		return usage
	}

	if err := h.Control.Dim(ctx, id, percent); err != nil {
		return h.controlError(id, err)
	}
	return render.Ephemeral(fmt.Sprintf("Set light %d to %d%%.", id, percent))
}

func (h *Handlers) controlError(id int, err error) render.Result {
	switch {
	case errors.Is(err, gateway.ErrDeviceNotFound):
		return render.Ephemeral(fmt.Sprintf("There is no device %d.", id))
	case errors.Is(err, device.ErrNotControllable):
		return render.Ephemeral(fmt.Sprintf("Device %d can't be switched or dimmed.", id))
	case errors.Is(err, device.ErrInvalidLevel):
		return render.Ephemeral("Brightness must be between 0 and 100.")
	case errors.Is(err, ErrGatewayUnavailable):
		h.Logger.Error("device command failed", "instance_id", id, "error", err)
		return render.Ephemeral(":warning: " + gatewayMessage)
	default:
		h.Logger.Error("device command failed", "instance_id", id, "error", err)
		return render.Ephemeral(":warning: " + render.GenericError)
	}
}

func (h *Handlers) openKudosDialog(ctx context.Context, ev Event) Outcome {
	if err := h.Dialogs.OpenDialogContext(ctx, ev.TriggerID, render.KudosDialog()); err != nil {
		h.Logger.Error("opening kudos dialog", "user", ev.User.ID, "error", err)
		return Now(render.Ephemeral(":warning: " + render.GenericError))
	}
	return Outcome{Reply: Ack{}}
}

// policyPrompt registers the member so the answer has a row to land on.
func (h *Handlers) policyPrompt(ctx context.Context, ev Event) (Outcome, error) {
	_, err := h.Members.Register(ctx, &member.Member{
		ID:          ev.User.ID,
		TeamID:      ev.Team.ID,
		DisplayName: ev.User.Name,
	})
	if err != nil {
		h.Logger.Error("registering member", "user", ev.User.ID, "error", err)
		return Now(render.Ephemeral(":warning: " + render.GenericError)), nil
	}
	return Now(render.PolicyPrompt(h.PolicyURL)), nil
}
