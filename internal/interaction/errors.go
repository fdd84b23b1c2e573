package interaction

import (
	"errors"
	"strings"

	"github.com/nerrad567/gray-logic-chatops/internal/gateway"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

var (
	// ErrUnroutable is returned when no handler matches an event.
	ErrUnroutable = errors.New("interaction: no handler for event")

	// ErrLookupFailure marks a missing record or failed query.
	ErrLookupFailure = errors.New("interaction: lookup failed")

	// ErrGatewayUnavailable marks a gateway that could not be reached. It is
	// the gateway package's sentinel so errors.Is matches errors from there.
	ErrGatewayUnavailable = gateway.ErrUnavailable

	// ErrMalformedEvent is returned when an event lacks the payload its type requires.
	ErrMalformedEvent = errors.New("interaction: malformed event")
)

// ValidationError rejects user input field by field. It is a normal outcome,
// not a failure, and is rendered as the immediate reply.
type ValidationError struct {
	Fields []render.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return "interaction: invalid fields: " + strings.Join(names, ", ")
}

// gatewayMessage is shown when the gateway cannot be reached.
const gatewayMessage = "The lighting gateway is unavailable right now."

// userMessage picks the text shown for a failed continuation.
func userMessage(err error) string {
	if errors.Is(err, ErrGatewayUnavailable) {
		return gatewayMessage
	}
	return render.GenericError
}
