package render

import "github.com/slack-go/slack"

// StripInteractive returns a copy of m with every interactive element
// removed: attachment actions, action blocks, input blocks, and section
// accessories. m is not modified. The copy replaces the original message.
func StripInteractive(m slack.Message) Result {
	msg := slack.Msg{
		Text:            m.Text,
		ReplaceOriginal: true,
	}

	if len(m.Attachments) > 0 {
		msg.Attachments = make([]slack.Attachment, len(m.Attachments))
		for i, a := range m.Attachments {
			a.Actions = nil
			a.CallbackID = ""
			msg.Attachments[i] = a
		}
	}

	if len(m.Blocks.BlockSet) > 0 {
		blocks := make([]slack.Block, 0, len(m.Blocks.BlockSet))
		for _, b := range m.Blocks.BlockSet {
			switch b := b.(type) {
			case *slack.ActionBlock, *slack.InputBlock:
				continue
			case *slack.SectionBlock:
				if b.Accessory != nil {
					cp := *b
					cp.Accessory = nil
					blocks = append(blocks, &cp)
					continue
				}
				blocks = append(blocks, b)
			default:
				blocks = append(blocks, b)
			}
		}
		msg.Blocks = slack.Blocks{BlockSet: blocks}
	}

	return Structured{Msg: msg}
}
