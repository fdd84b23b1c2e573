package interaction

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

const (
	policyAcceptedText = "Thanks for agreeing to the community policy. Welcome aboard!"
	policyDeniedText   = "You declined the community policy. Run the policy command again if you change your mind."
)

// policyAgreement records a member's answer to the policy prompt.
func (h *Handlers) policyAgreement(_ context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(ActionPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: policy agreement without actions", ErrMalformedEvent)
	}
	action, ok := payload.First()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: policy agreement without actions", ErrMalformedEvent)
	}

	var agreed bool
	switch action.Value {
	case render.PolicyAccept:
		agreed = true
	case render.PolicyDeny:
		agreed = false
	default:
		return Outcome{}, fmt.Errorf("%w: policy value %q", ErrMalformedEvent, action.Value)
	}

	return Later(h.strippedOrAck(ev), func(ctx context.Context, push Pusher) error {
		if _, err := h.Members.FindByID(ctx, ev.User.ID); err != nil {
			return lookupError("finding member", err)
		}
		if _, err := h.Members.SetPolicyAgreement(ctx, ev.User.ID, agreed); err != nil {
			return lookupError("saving policy agreement", err)
		}

		h.Logger.Info("policy answered", "user", ev.User.ID, "agreed", agreed)
		if agreed {
			return push.Push(ctx, render.Confirmation(policyAcceptedText))
		}
		return push.Push(ctx, render.Confirmation(policyDeniedText))
	}), nil
}

// strippedOrAck replies with the original message minus its controls, so a
// prompt cannot be answered twice while the continuation runs.
func (h *Handlers) strippedOrAck(ev Event) render.Result {
	if ev.OriginalMessage == nil {
		return render.Deferred{}
	}
	return render.StripInteractive(*ev.OriginalMessage)
}

func lookupError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLookupFailure, op, err)
}
