package render

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/neighborhood"
)

// GenericError is shown when a lookup or write fails for reasons the user can't fix.
const GenericError = "Sorry, something went wrong. Please try again later."

// maxOptions is the most options an external select accepts per response.
const maxOptions = 10

// Confirmation replaces the original message with text.
func Confirmation(text string) Result {
	return Text{Body: text, ReplaceOriginal: true}
}

// Error replaces the original message with a warning.
func Error(text string) Result {
	return Text{Body: ":warning: " + text, ReplaceOriginal: true}
}

// Ephemeral is a text reply only the invoking user sees.
func Ephemeral(text string) Result {
	return Text{Body: text, Ephemeral: true}
}

// Validation rejects dialog fields.
func Validation(errs ...FieldError) Result {
	return ValidationErrors{Errors: errs}
}

// Neighborhood shows a selected neighborhood as a linked attachment.
func Neighborhood(n neighborhood.Neighborhood) Result {
	return Structured{Msg: slack.Msg{
		ReplaceOriginal: true,
		Attachments: []slack.Attachment{{
			Title:     n.Name,
			TitleLink: n.URL,
			Text:      n.Description,
			Fallback:  n.Name,
		}},
	}}
}

// OptionsResponse is the body of an external select options reply.
type OptionsResponse struct {
	Options []slack.AttachmentActionOption `json:"options"`
}

// Options lists up to ten neighborhoods as select options. The slice is never
// nil so an empty result renders as {"options":[]}.
func Options(ns []neighborhood.Neighborhood) OptionsResponse {
	n := min(len(ns), maxOptions)
	out := OptionsResponse{Options: make([]slack.AttachmentActionOption, 0, n)}
	for _, nb := range ns[:n] {
		out.Options = append(out.Options, slack.AttachmentActionOption{Text: nb.Name, Value: nb.ID})
	}
	return out
}

// KudosAck is pushed as soon as a kudos submission is accepted.
func KudosAck(giverID, receiverID string) Result {
	return Text{Body: fmt.Sprintf("<@%s> gave kudos to <@%s>! Tallying...", giverID, receiverID)}
}

// KudosTotal reports the receiver's new kudos count.
func KudosTotal(receiverID string, total int, comment string) Result {
	body := fmt.Sprintf("<@%s> now has *%d* kudos.", receiverID, total)
	if comment != "" {
		body += "\n> " + comment
	}
	return Text{Body: body}
}
