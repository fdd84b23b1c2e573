package interaction

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// EventType is the kind of interaction delivered.
type EventType string

const (
	EventAction           EventType = "action"
	EventOptionsRequest   EventType = "options_request"
	EventDialogSubmission EventType = "dialog_submission"
	EventSlashCommand     EventType = "slash_command"
)

// UserRef identifies the member who triggered an event.
type UserRef struct {
	ID   string
	Name string
}

// TeamRef identifies the workspace an event came from.
type TeamRef struct {
	ID     string
	Domain string
}

// Event is a parsed interaction, independent of its wire form.
type Event struct {
	Type        EventType
	CallbackID  string
	User        UserRef
	Team        TeamRef
	ChannelID   string
	ResponseURL string
	TriggerID   string
	Payload     Payload

	// OriginalMessage is the message the interaction came from, if any.
	OriginalMessage *slack.Message
}

// Payload is one of ActionPayload, OptionsPayload, SubmissionPayload, or CommandPayload.
type Payload interface {
	isPayload()
}

// Action is one button press, menu choice, or input dispatch.
type Action struct {
	Name     string
	ActionID string
	BlockID  string
	// Value is a button's value or an input's text.
	Value string
	// Selected is the chosen option's value for menus.
	Selected string
}

// ActionPayload carries the actions of an action event.
type ActionPayload struct {
	Actions []Action
}

// First returns the first action. ok is false when there are none.
func (p ActionPayload) First() (Action, bool) {
	if len(p.Actions) == 0 {
		return Action{}, false
	}
	return p.Actions[0], true
}

// OptionsPayload carries the text typed into an external select.
type OptionsPayload struct {
	Name  string
	Value string
}

// SubmissionPayload carries a dialog's submitted fields.
type SubmissionPayload struct {
	Fields map[string]string
	State  string
}

// CommandPayload carries a slash command invocation.
type CommandPayload struct {
	Command string
	Text    string
}

func (ActionPayload) isPayload()     {}
func (OptionsPayload) isPayload()    {}
func (SubmissionPayload) isPayload() {}
func (CommandPayload) isPayload()    {}

// FromCallback converts an interaction callback posted to the actions endpoint.
func FromCallback(cb slack.InteractionCallback) (Event, error) {
	ev := baseEvent(cb)

	switch cb.Type {
	case slack.InteractionTypeInteractionMessage:
		ev.Type = EventAction
		ev.CallbackID = cb.CallbackID
		ev.Payload = attachmentActions(cb)
		ev.OriginalMessage = originalMessage(cb.OriginalMessage)
	case slack.InteractionTypeBlockActions:
		ev.Type = EventAction
		p := blockActions(cb)
		ev.Payload = p
		if a, ok := p.First(); ok {
			ev.CallbackID = callbackFromActionID(a.ActionID)
		}
		ev.OriginalMessage = originalMessage(cb.Message)
	case slack.InteractionTypeDialogSubmission:
		ev.Type = EventDialogSubmission
		ev.CallbackID = cb.CallbackID
		ev.Payload = SubmissionPayload{Fields: cb.Submission, State: cb.State}
	default:
		return Event{}, fmt.Errorf("%w: unsupported interaction type %q", ErrMalformedEvent, cb.Type)
	}
	return ev, nil
}

// FromOptionsCallback converts a callback posted to the options endpoint.
// Only attachment menus are accepted: the replies are attachment-style
// options, which dialog and block selects do not read.
func FromOptionsCallback(cb slack.InteractionCallback) (Event, error) {
	if cb.Type != slack.InteractionTypeInteractionMessage {
		return Event{}, fmt.Errorf("%w: unsupported options type %q", ErrMalformedEvent, cb.Type)
	}

	ev := baseEvent(cb)
	ev.Type = EventOptionsRequest
	ev.CallbackID = cb.CallbackID
	ev.Payload = OptionsPayload{Name: cb.Name, Value: cb.Value}
	return ev, nil
}

// FromSlashCommand converts a slash command. The command itself is the callback ID.
func FromSlashCommand(cmd slack.SlashCommand) Event {
	return Event{
		Type:        EventSlashCommand,
		CallbackID:  cmd.Command,
		User:        UserRef{ID: cmd.UserID, Name: cmd.UserName},
		Team:        TeamRef{ID: cmd.TeamID, Domain: cmd.TeamDomain},
		ChannelID:   cmd.ChannelID,
		ResponseURL: cmd.ResponseURL,
		TriggerID:   cmd.TriggerID,
		Payload:     CommandPayload{Command: cmd.Command, Text: strings.TrimSpace(cmd.Text)},
	}
}

// callbackFromActionID maps "devices_page:next" to "devices_page".
// Block actions have no callback ID of their own, so action IDs carry it.
func callbackFromActionID(actionID string) string {
	prefix, _, _ := strings.Cut(actionID, ":")
	return prefix
}

func baseEvent(cb slack.InteractionCallback) Event {
	return Event{
		User:        UserRef{ID: cb.User.ID, Name: cb.User.Name},
		Team:        TeamRef{ID: cb.Team.ID, Domain: cb.Team.Domain},
		ChannelID:   cb.Channel.ID,
		ResponseURL: cb.ResponseURL,
		TriggerID:   cb.TriggerID,
	}
}

func attachmentActions(cb slack.InteractionCallback) ActionPayload {
	p := ActionPayload{Actions: make([]Action, 0, len(cb.ActionCallback.AttachmentActions))}
	for _, a := range cb.ActionCallback.AttachmentActions {
		if a == nil {
			continue
		}
		act := Action{Name: a.Name, Value: a.Value}
		if len(a.SelectedOptions) > 0 {
			act.Selected = a.SelectedOptions[0].Value
		}
		p.Actions = append(p.Actions, act)
	}
	return p
}

func blockActions(cb slack.InteractionCallback) ActionPayload {
	p := ActionPayload{Actions: make([]Action, 0, len(cb.ActionCallback.BlockActions))}
	for _, a := range cb.ActionCallback.BlockActions {
		if a == nil {
			continue
		}
		p.Actions = append(p.Actions, Action{
			ActionID: a.ActionID,
			BlockID:  a.BlockID,
			Value:    a.Value,
			Selected: a.SelectedOption.Value,
		})
	}
	return p
}

func originalMessage(m slack.Message) *slack.Message {
	if m.Timestamp == "" && m.Text == "" && len(m.Attachments) == 0 && len(m.Blocks.BlockSet) == 0 {
		return nil
	}
	msg := m
	return &msg
}
