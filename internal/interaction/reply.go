package interaction

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// Immediate is the synchronous HTTP reply: Ack, Message, Validation, or Options.
type Immediate interface {
	isImmediate()
}

// Ack is an empty 200 response.
type Ack struct{}

// Message is a message body.
type Message struct {
	Msg slack.Msg
}

// Validation rejects a dialog submission.
type Validation struct {
	Errors slack.DialogInputValidationErrors
}

// Options answers an external select.
type Options struct {
	Response render.OptionsResponse
}

func (Ack) isImmediate()        {}
func (Message) isImmediate()    {}
func (Validation) isImmediate() {}
func (Options) isImmediate()    {}

// Reply renders r as an immediate reply.
func Reply(r render.Result) Immediate {
	switch body := render.Render(r).(type) {
	case nil:
		return Ack{}
	case *slack.Msg:
		return Message{Msg: *body}
	case *slack.DialogInputValidationErrors:
		return Validation{Errors: *body}
	default:
		panic("interaction: unexpected render output")
	}
}

// Body returns the JSON body for i, or nil for an empty body.
func Body(i Immediate) any {
	switch i := i.(type) {
	case Ack:
		return nil
	case Message:
		return i.Msg
	case Validation:
		return i.Errors
	case Options:
		return i.Response
	default:
		return nil
	}
}

// Pusher delivers deferred results to the event's response URL.
// Pushes are sent in call order.
type Pusher interface {
	Push(ctx context.Context, r render.Result) error
}

// Continuation is the deferred half of a handler. A returned error is
// rendered and pushed by the Router.
type Continuation func(ctx context.Context, push Pusher) error

// Outcome is what a handler produces for one event.
type Outcome struct {
	Reply        Immediate
	Continuation Continuation
}

// Now is an outcome with no deferred work.
func Now(r render.Result) Outcome {
	return Outcome{Reply: Reply(r)}
}

// Later replies with r and then runs c.
func Later(r render.Result, c Continuation) Outcome {
	return Outcome{Reply: Reply(r), Continuation: c}
}
