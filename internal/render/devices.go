package render

import (
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
)

// DevicesPerPage keeps a page under Slack's 50-block message limit:
// three blocks per device plus a context block and an action block.
const DevicesPerPage = 15

// Block and action ID prefixes used by the device list.
const (
	deviceBlockPrefix   = "device:"
	paginationBlockID   = "devices_pagination"
	pagePrevActionID    = CallbackDevicesPage + ":prev"
	pageNextActionID    = CallbackDevicesPage + ":next"
	maxDimmer           = 254
	noteAction          = CallbackDeviceNote + ":"
	notePlaceholderText = "Add a note"
)

// DeviceNoteActionID is the action ID of the note input for a device.
func DeviceNoteActionID(instanceID int) string {
	return noteAction + strconv.Itoa(instanceID)
}

// PageCount returns how many pages n devices need. Zero devices is one page.
func PageCount(n int) int {
	if n <= DevicesPerPage {
		return 1
	}
	return (n + DevicesPerPage - 1) / DevicesPerPage
}

// DeviceList renders one page of snapshots. Each device becomes a section,
// a note input, and a divider, in input order. page is 1-based and clamped.
func DeviceList(snapshots []device.Snapshot, page int) Result {
	if len(snapshots) == 0 {
		empty := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "No devices found.", false, false), nil, nil)
		return Structured{Msg: slack.Msg{
			Text:   "No devices found.",
			Blocks: slack.Blocks{BlockSet: []slack.Block{empty}},
		}}
	}

	pages := PageCount(len(snapshots))
	page = max(1, min(page, pages))

	start := (page - 1) * DevicesPerPage
	end := min(start+DevicesPerPage, len(snapshots))

	blocks := make([]slack.Block, 0, (end-start)*3+2)
	for _, s := range snapshots[start:end] {
		blocks = append(blocks, deviceSection(s), deviceNote(s), slack.NewDividerBlock())
	}

	if pages > 1 {
		blocks = append(blocks, paginationBlocks(page, pages, len(snapshots))...)
	}

	return Structured{Msg: slack.Msg{
		Text:   fmt.Sprintf("Devices (page %d of %d)", page, pages),
		Blocks: slack.Blocks{BlockSet: blocks},
	}}
}

func deviceSection(s device.Snapshot) *slack.SectionBlock {
	name := s.Name
	if name == "" {
		name = "Unnamed device"
	}
	title := slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s* (%s)", name, s.Kind), false, false)

	fields := []*slack.TextBlockObject{field("ID", strconv.Itoa(s.InstanceID))}
	if s.OnOff != nil {
		state := "off"
		if *s.OnOff {
			state = "on"
		}
		fields = append(fields, field("State", state))
	}
	if s.Spectrum != nil {
		fields = append(fields, field("Spectrum", *s.Spectrum))
	}
	if s.DimmerLevel != nil {
		fields = append(fields, field("Dimmer", fmt.Sprintf("%d (%d%%)", *s.DimmerLevel, *s.DimmerLevel*100/maxDimmer)))
	}
	if s.ColorHex != nil {
		fields = append(fields, field("Color", "#"+*s.ColorHex))
	}
	if s.BatteryPercent != nil {
		fields = append(fields, field("Battery", fmt.Sprintf("%d%%", *s.BatteryPercent)))
	}

	return slack.NewSectionBlock(title, fields, nil, slack.SectionBlockOptionBlockID(deviceBlockPrefix+strconv.Itoa(s.InstanceID)))
}

func deviceNote(s device.Snapshot) *slack.InputBlock {
	element := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, notePlaceholderText, false, false),
		DeviceNoteActionID(s.InstanceID),
	)
	element.InitialValue = s.Note
	block := slack.NewInputBlock(
		noteAction+"block:"+strconv.Itoa(s.InstanceID),
		slack.NewTextBlockObject(slack.PlainTextType, "Note", false, false),
		nil,
		element,
	)
	block.Optional = true
	block.DispatchAction = true
	return block
}

func paginationBlocks(page, pages, total int) []slack.Block {
	summary := slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Page %d of %d · %d devices", page, pages, total), false, false),
	)

	var buttons []slack.BlockElement
	if page > 1 {
		buttons = append(buttons, slack.NewButtonBlockElement(pagePrevActionID, strconv.Itoa(page-1),
			slack.NewTextBlockObject(slack.PlainTextType, "Previous", false, false)))
	}
	if page < pages {
		buttons = append(buttons, slack.NewButtonBlockElement(pageNextActionID, strconv.Itoa(page+1),
			slack.NewTextBlockObject(slack.PlainTextType, "Next", false, false)))
	}

	return []slack.Block{summary, slack.NewActionBlock(paginationBlockID, buttons...)}
}

func field(label, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", label, value), false, false)
}
