package interaction

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

const maxNeighborhoodOptions = 10

// neighborhoodOptions answers the neighborhood select's typeahead.
// Lookup failures produce an empty list rather than an error.
func (h *Handlers) neighborhoodOptions(ctx context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(OptionsPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: options request without payload", ErrMalformedEvent)
	}

	matches, err := h.Neighborhoods.FuzzyFind(ctx, payload.Value, maxNeighborhoodOptions)
	if err != nil {
		h.Logger.Error("neighborhood autocomplete failed", "query", payload.Value, "error", err)
		return Outcome{Reply: Options{Response: render.Options(nil)}}, nil
	}
	return Outcome{Reply: Options{Response: render.Options(matches)}}, nil
}

// neighborhoodSelected shows the details of the picked neighborhood.
func (h *Handlers) neighborhoodSelected(_ context.Context, ev Event) (Outcome, error) {
	payload, ok := ev.Payload.(ActionPayload)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: neighborhood selection without actions", ErrMalformedEvent)
	}
	action, _ := payload.First()
	selected := action.Selected
	if selected == "" {
		selected = action.Value
	}

	return Later(h.strippedOrAck(ev), func(ctx context.Context, push Pusher) error {
		if selected == "" {
			return fmt.Errorf("%w: no neighborhood selected", ErrLookupFailure)
		}
		n, err := h.Neighborhoods.FindByID(ctx, selected)
		if err != nil {
			return lookupError("finding neighborhood "+selected, err)
		}
		return push.Push(ctx, render.Neighborhood(*n))
	}), nil
}
