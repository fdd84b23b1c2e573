package render

import "github.com/slack-go/slack"

// KudosDialog asks who to thank and why. Field names match the kudos handler.
func KudosDialog() slack.Dialog {
	user := slack.NewUsersSelect("user", "Who deserves kudos?")
	comment := slack.NewTextAreaInput("comment", "What did they do?", "")
	comment.Hint = "Shown in the channel with the kudos."

	return slack.Dialog{
		CallbackID:  CallbackKudos,
		Title:       "Give kudos",
		SubmitLabel: "Send",
		Elements:    []slack.DialogElement{user, comment},
	}
}
