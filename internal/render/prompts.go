package render

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// Callback IDs carried by the interactive prompts below.
const (
	CallbackPolicy       = "policy_agreement"
	CallbackNeighborhood = "neighborhood"
	CallbackKudos        = "kudos"
	CallbackDevicesPage  = "devices_page"
	CallbackDeviceNote   = "device_note"
)

// Policy prompt button values.
const (
	PolicyAccept = "accept"
	PolicyDeny   = "deny"
)

// PolicyPrompt asks the member to accept or deny the community policy.
func PolicyPrompt(policyURL string) Result {
	text := "Please review the community policy and let us know whether you agree."
	if policyURL != "" {
		text = fmt.Sprintf("Please review the <%s|community policy> and let us know whether you agree.", policyURL)
	}
	return Structured{Msg: slack.Msg{
		Text: "Community policy",
		Attachments: []slack.Attachment{{
			Text:       text,
			Fallback:   "Community policy",
			CallbackID: CallbackPolicy,
			Actions: []slack.AttachmentAction{
				{Name: "policy", Text: "I agree", Type: "button", Value: PolicyAccept, Style: "primary"},
				{Name: "policy", Text: "I do not agree", Type: "button", Value: PolicyDeny, Style: "danger"},
			},
		}},
	}}
}

// NeighborhoodMenu posts an external select backed by the options endpoint.
func NeighborhoodMenu() Result {
	return Structured{Msg: slack.Msg{
		Text: "Which neighborhood are you in?",
		Attachments: []slack.Attachment{{
			Text:       "Start typing to search.",
			Fallback:   "Neighborhood picker",
			CallbackID: CallbackNeighborhood,
			Actions: []slack.AttachmentAction{{
				Name:       "neighborhood",
				Text:       "Pick a neighborhood",
				Type:       "select",
				DataSource: "external",
			}},
		}},
	}}
}

// Usage lists the slash command's keywords.
func Usage(command string) Result {
	lines := []string{
		fmt.Sprintf("Usage: `%s <keyword>`", command),
		"• `list [page]` show devices",
		"• `on <id>` / `off <id>` switch a light or plug",
		"• `dim <id> <0-100>` set a light's brightness",
		"• `kudos` thank someone",
		"• `policy` review the community policy",
		"• `neighborhood` tell us where you are",
		"• `help` show this message",
	}
	return Ephemeral(strings.Join(lines, "\n"))
}
