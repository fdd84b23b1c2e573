package render

import (
	"errors"

	"github.com/slack-go/slack"
)

// ErrNotPushable is returned by Webhook for results that only make sense as
// an immediate reply.
var ErrNotPushable = errors.New("render: result cannot be pushed")

const responseTypeEphemeral = "ephemeral"

// Result is one of Text, Structured, ValidationErrors, or Deferred.
type Result interface {
	isResult()
}

// Text is a plain message.
type Text struct {
	Body            string
	ReplaceOriginal bool
	Ephemeral       bool
}

// Structured is a message with blocks or attachments.
type Structured struct {
	Msg slack.Msg
}

// ValidationErrors rejects a dialog submission field by field.
type ValidationErrors struct {
	Errors []FieldError
}

// FieldError is a message attached to one dialog field.
type FieldError struct {
	Name    string
	Message string
}

// Deferred acknowledges receipt with an empty body; the real reply is pushed later.
type Deferred struct{}

func (Text) isResult()             {}
func (Structured) isResult()       {}
func (ValidationErrors) isResult() {}
func (Deferred) isResult()         {}

// Render returns the JSON payload for r, or nil when the body should be empty.
func Render(r Result) any {
	switch r := r.(type) {
	case Text:
		msg := r.msg()
		return &msg
	case Structured:
		msg := r.Msg
		return &msg
	case ValidationErrors:
		out := slack.DialogInputValidationErrors{
			Errors: make([]slack.DialogInputValidationError, 0, len(r.Errors)),
		}
		for _, e := range r.Errors {
			out.Errors = append(out.Errors, slack.DialogInputValidationError{Name: e.Name, Error: e.Message})
		}
		return &out
	case Deferred:
		return nil
	default:
		panic("render: unknown result type")
	}
}

// Webhook converts r into a response_url message.
func Webhook(r Result) (*slack.WebhookMessage, error) {
	var msg slack.Msg
	switch r := r.(type) {
	case Text:
		msg = r.msg()
	case Structured:
		msg = r.Msg
	case ValidationErrors, Deferred:
		return nil, ErrNotPushable
	default:
		return nil, ErrNotPushable
	}

	wm := &slack.WebhookMessage{
		Text:            msg.Text,
		Attachments:     msg.Attachments,
		ResponseType:    msg.ResponseType,
		ReplaceOriginal: msg.ReplaceOriginal,
	}
	if len(msg.Blocks.BlockSet) > 0 {
		blocks := msg.Blocks
		wm.Blocks = &blocks
	}
	return wm, nil
}

func (t Text) msg() slack.Msg {
	msg := slack.Msg{Text: t.Body, ReplaceOriginal: t.ReplaceOriginal}
	if t.Ephemeral {
		msg.ResponseType = responseTypeEphemeral
	}
	return msg
}
