package interaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// Kudos dialog field names.
const (
	KudosFieldUser    = "user"
	KudosFieldComment = "comment"
)

// kudosSubmitted validates the kudos dialog, then acknowledges, counts, and
// reports the new total in that order.
func (h *Handlers) kudosSubmitted(_ context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(SubmissionPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: kudos without submission", ErrMalformedEvent)
	}

	receiver := strings.TrimSpace(payload.Fields[KudosFieldUser])
	comment := strings.TrimSpace(payload.Fields[KudosFieldComment])

	var fields []render.FieldError
	switch {
	case receiver == "":
		fields = append(fields, render.FieldError{Name: KudosFieldUser, Message: "Pick someone to thank."})
	case receiver == ev.User.ID:
		fields = append(fields, render.FieldError{Name: KudosFieldUser, Message: "You can't give kudos to yourself."})
	}
	if comment == "" {
		fields = append(fields, render.FieldError{Name: KudosFieldComment, Message: "Tell them what they did."})
	}
	if len(fields) > 0 {
		return Outcome{}, &ValidationError{Fields: fields}
	}

	giver := ev.User.ID
	return Later(render.Deferred{}, func(ctx context.Context, push Pusher) error {
		if err := push.Push(ctx, render.KudosAck(giver, receiver)); err != nil {
			return err
		}

		m, err := h.Members.IncrementKudos(ctx, receiver, giver, comment)
		if err != nil {
			return lookupError("recording kudos", err)
		}

		h.Logger.Info("kudos given", "giver", giver, "receiver", receiver, "total", m.KudosCount)
		return push.Push(ctx, render.KudosTotal(receiver, m.KudosCount, comment))
	}), nil
}
