package interaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// deviceNote saves the text dispatched from a device's note input.
func (h *Handlers) deviceNote(_ context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(ActionPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: note without actions", ErrMalformedEvent)
	}
	action, ok := payload.First()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: note without actions", ErrMalformedEvent)
	}

	_, idText, _ := strings.Cut(action.ActionID, ":")
	id, err := strconv.Atoi(idText)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: note action %q", ErrMalformedEvent, action.ActionID)
	}

	note := device.Note{InstanceID: id, Text: action.Value, AuthorID: ev.User.ID}
	return Later(render.Deferred{}, func(ctx context.Context, push Pusher) error {
		err := h.Notes.SaveNote(ctx, note)
		if errors.Is(err, device.ErrEmptyNote) {
			return push.Push(ctx, render.Ephemeral("Notes can't be blank."))
		}
		if err != nil {
			return lookupError("saving device note", err)
		}
		return push.Push(ctx, render.Ephemeral(fmt.Sprintf("Saved your note on device %d.", id)))
	}), nil
}
