package interaction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
	"github.com/nerrad567/gray-logic-chatops/internal/neighborhood"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

const hookURL = "https://hooks.example/response"

func policyMessage() *slack.Message {
	m := slack.Message{}
	m.Text = "Community policy"
	m.Attachments = []slack.Attachment{{
		Text:       "Do you agree?",
		CallbackID: render.CallbackPolicy,
		Actions:    []slack.AttachmentAction{{Name: "policy", Type: "button", Value: render.PolicyAccept}},
	}}
	return &m
}

func policyEvent(value string) Event {
	return Event{
		Type:            EventAction,
		CallbackID:      render.CallbackPolicy,
		User:            UserRef{ID: "U1", Name: "ada"},
		ResponseURL:     hookURL,
		Payload:         ActionPayload{Actions: []Action{{Name: "policy", Value: value}}},
		OriginalMessage: policyMessage(),
	}
}

func TestPolicyAgreement(t *testing.T) {
	tests := []struct {
		value      string
		wantAgreed bool
		wantText   string
	}{
		{render.PolicyAccept, true, policyAcceptedText},
		{render.PolicyDeny, false, policyDeniedText},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := newFixture(t)
			f.members.members["U1"] = &member.Member{ID: "U1"}

			reply := f.route(t, policyEvent(tt.value))

			msg := messageOf(t, reply)
			if !msg.ReplaceOriginal || msg.Text != "Community policy" {
				t.Errorf("immediate = %+v, want stripped original", msg)
			}
			if len(msg.Attachments) != 1 || len(msg.Attachments[0].Actions) != 0 {
				t.Errorf("immediate attachments = %+v, want actions removed", msg.Attachments)
			}

			pushes := f.transport.all()
			if len(pushes) != 1 {
				t.Fatalf("pushes = %d, want 1", len(pushes))
			}
			txt := textOf(t, pushes[0].result)
			if txt.Body != tt.wantText || !txt.ReplaceOriginal {
				t.Errorf("push = %+v, want %q replace-original", txt, tt.wantText)
			}

			got := f.members.members["U1"].PolicyAgreed
			if got == nil || *got != tt.wantAgreed {
				t.Errorf("PolicyAgreed = %v, want %v", got, tt.wantAgreed)
			}
		})
	}
}

func TestPolicyAgreement_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fixture)
	}{
		{"unknown member", func(*fixture) {}},
		{"store failure", func(f *fixture) {
			f.members.members["U1"] = &member.Member{ID: "U1"}
			f.members.setErr = errStore
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			f.route(t, policyEvent(render.PolicyAccept))

			// Exactly one reply: the rendered error. No duplicate.
			pushes := f.transport.all()
			if len(pushes) != 1 {
				t.Fatalf("pushes = %d, want exactly 1", len(pushes))
			}
			if txt := textOf(t, pushes[0].result); !strings.Contains(txt.Body, render.GenericError) {
				t.Errorf("push = %q, want generic error", txt.Body)
			}
		})
	}
}

func TestPolicyAgreement_UnknownValue(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.Route(context.Background(), policyEvent("maybe")); !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("Route() error = %v, want ErrMalformedEvent", err)
	}
}

func kudosEvent(receiver, comment string) Event {
	return Event{
		Type:        EventDialogSubmission,
		CallbackID:  render.CallbackKudos,
		User:        UserRef{ID: "U1"},
		ResponseURL: hookURL,
		Payload: SubmissionPayload{Fields: map[string]string{
			KudosFieldUser:    receiver,
			KudosFieldComment: comment,
		}},
	}
}

func TestKudos_EmptyComment(t *testing.T) {
	for _, comment := range []string{"", "   \n\t"} {
		f := newFixture(t)

		reply := f.route(t, kudosEvent("U2", comment))

		v, ok := reply.(Validation)
		if !ok {
			t.Fatalf("reply = %T, want Validation", reply)
		}
		if len(v.Errors.Errors) != 1 || v.Errors.Errors[0].Name != KudosFieldComment {
			t.Errorf("errors = %+v, want exactly one on %q", v.Errors.Errors, KudosFieldComment)
		}
		if n := len(f.transport.all()); n != 0 {
			t.Errorf("pushes = %d, want 0", n)
		}
		if _, err := f.members.FindByID(context.Background(), "U2"); err == nil {
			t.Error("receiver was touched despite validation failure")
		}
	}
}

func TestKudos_InvalidReceiver(t *testing.T) {
	for _, receiver := range []string{"", "U1"} {
		f := newFixture(t)
		reply := f.route(t, kudosEvent(receiver, "great work"))
		v, ok := reply.(Validation)
		if !ok || len(v.Errors.Errors) != 1 || v.Errors.Errors[0].Name != KudosFieldUser {
			t.Errorf("receiver %q: reply = %+v, want one user error", receiver, reply)
		}
	}
}

func TestKudos_IncrementsAndOrdersPushes(t *testing.T) {
	f := newFixture(t)
	f.members.members["U2"] = &member.Member{ID: "U2", KudosCount: 4}

	reply := f.route(t, kudosEvent("U2", "  fixed the porch light  "))
	if _, ok := reply.(Ack); !ok {
		t.Fatalf("reply = %T, want Ack", reply)
	}

	pushes := f.transport.all()
	if len(pushes) != 2 {
		t.Fatalf("pushes = %d, want 2", len(pushes))
	}

	ack := textOf(t, pushes[0].result)
	if !strings.Contains(ack.Body, "<@U1>") || !strings.Contains(ack.Body, "<@U2>") {
		t.Errorf("ack push = %q, want both users", ack.Body)
	}

	final := textOf(t, pushes[1].result)
	if !strings.Contains(final.Body, "*5*") {
		t.Errorf("final push = %q, want total 5", final.Body)
	}
	if !strings.Contains(final.Body, "fixed the porch light") {
		t.Errorf("final push = %q, want trimmed comment", final.Body)
	}

	if got := f.members.members["U2"].KudosCount; got != 5 {
		t.Errorf("KudosCount = %d, want 5", got)
	}
}

func TestKudos_StoreFailureAfterAck(t *testing.T) {
	f := newFixture(t)
	f.members.kudosErr = errStore

	f.route(t, kudosEvent("U2", "thanks"))

	pushes := f.transport.all()
	if len(pushes) != 2 {
		t.Fatalf("pushes = %d, want ack and error", len(pushes))
	}
	if txt := textOf(t, pushes[1].result); !strings.Contains(txt.Body, render.GenericError) {
		t.Errorf("second push = %q, want generic error", txt.Body)
	}
}

func optionsEvent(text string) Event {
	return Event{
		Type:       EventOptionsRequest,
		CallbackID: render.CallbackNeighborhood,
		Payload:    OptionsPayload{Name: "neighborhood", Value: text},
	}
}

func TestNeighborhoodOptions(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.neighborhoods.all = append(f.neighborhoods.all, neighborhood.Neighborhood{ID: string(rune('a' + i)), Name: "Hood"})
	}

	reply := f.route(t, optionsEvent("ho"))
	opts, ok := reply.(Options)
	if !ok {
		t.Fatalf("reply = %T, want Options", reply)
	}
	if len(opts.Response.Options) != 10 {
		t.Errorf("options = %d, want 10", len(opts.Response.Options))
	}
}

func TestNeighborhoodOptions_LookupFailure(t *testing.T) {
	f := newFixture(t)
	f.neighborhoods.err = errStore

	reply := f.route(t, optionsEvent("mis"))
	opts, ok := reply.(Options)
	if !ok {
		t.Fatalf("reply = %T, want Options", reply)
	}
	if opts.Response.Options == nil || len(opts.Response.Options) != 0 {
		t.Errorf("options = %#v, want empty non-nil list", opts.Response.Options)
	}
	if n := len(f.transport.all()); n != 0 {
		t.Errorf("pushes = %d, want 0", n)
	}
}

func TestNeighborhoodSelected(t *testing.T) {
	f := newFixture(t)
	f.neighborhoods.all = []neighborhood.Neighborhood{{ID: "soma", Name: "SoMa", URL: "https://example.org/soma", Description: "South of Market"}}

	ev := Event{
		Type:        EventAction,
		CallbackID:  render.CallbackNeighborhood,
		ResponseURL: hookURL,
		Payload:     ActionPayload{Actions: []Action{{Name: "neighborhood", Selected: "soma"}}},
	}
	if _, ok := f.route(t, ev).(Ack); !ok {
		t.Error("selection without original message should ack")
	}

	pushes := f.transport.all()
	if len(pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pushes))
	}
	s, ok := pushes[0].result.(render.Structured)
	if !ok || len(s.Msg.Attachments) != 1 {
		t.Fatalf("push = %+v", pushes[0].result)
	}
	a := s.Msg.Attachments[0]
	if a.Title != "SoMa" || a.TitleLink != "https://example.org/soma" || a.Text != "South of Market" {
		t.Errorf("attachment = %+v", a)
	}
}

func TestNeighborhoodSelected_NotFound(t *testing.T) {
	f := newFixture(t)
	ev := Event{
		Type:        EventAction,
		CallbackID:  render.CallbackNeighborhood,
		ResponseURL: hookURL,
		Payload:     ActionPayload{Actions: []Action{{Selected: "atlantis"}}},
	}
	f.route(t, ev)

	pushes := f.transport.all()
	if len(pushes) != 1 || !strings.Contains(textOf(t, pushes[0].result).Body, render.GenericError) {
		t.Errorf("pushes = %+v, want one generic error", pushes)
	}
}

func slashEvent(text string) Event {
	return FromSlashCommand(slack.SlashCommand{
		Command:     "/lights",
		Text:        text,
		UserID:      "U1",
		UserName:    "ada",
		TeamID:      "T1",
		ResponseURL: hookURL,
		TriggerID:   "trig-1",
	})
}

func TestSlash_ListDevices(t *testing.T) {
	f := newFixture(t)
	on := true
	f.lister.snapshots = []device.Snapshot{
		{InstanceID: 1, Name: "Desk", Kind: device.KindLight, OnOff: &on},
		{InstanceID: 2, Name: "Kettle", Kind: device.KindPlug},
	}

	for _, text := range []string{"", "list", "LIST 1"} {
		msg := messageOf(t, f.route(t, slashEvent(text)))
		if len(msg.Blocks.BlockSet) != 6 {
			t.Errorf("%q: blocks = %d, want 6", text, len(msg.Blocks.BlockSet))
		}
		if msg.ReplaceOriginal {
			t.Errorf("%q: slash listing replaces original", text)
		}
	}
	if n := len(f.transport.all()); n != 0 {
		t.Errorf("device listing pushed %d messages, want single reply", n)
	}
}

func TestSlash_ListDevices_GatewayUnavailable(t *testing.T) {
	f := newFixture(t)
	f.lister.err = ErrGatewayUnavailable

	msg := messageOf(t, f.route(t, slashEvent("list")))
	if !strings.Contains(msg.Text, gatewayMessage) {
		t.Errorf("reply = %q, want gateway error text", msg.Text)
	}
	if len(f.transport.all()) != 0 {
		t.Error("gateway failure produced a push")
	}
}

func TestDevicesPage(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < render.DevicesPerPage+3; i++ {
		f.lister.snapshots = append(f.lister.snapshots, device.Snapshot{InstanceID: 100 + i, Kind: device.KindPlug})
	}

	ev := Event{
		Type:       EventAction,
		CallbackID:  render.CallbackDevicesPage,
		ResponseURL: hookURL,
		Payload:     ActionPayload{Actions: []Action{{ActionID: "devices_page:next", Value: "2"}}},
	}
	if reply, ok := f.route(t, ev).(Ack); !ok {
		t.Fatalf("reply = %T, want Ack", reply)
	}

	pushes := f.transport.all()
	if len(pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pushes))
	}
	if pushes[0].url != hookURL {
		t.Errorf("push url = %q, want %q", pushes[0].url, hookURL)
	}
	s, ok := pushes[0].result.(render.Structured)
	if !ok {
		t.Fatalf("push = %T, want render.Structured", pushes[0].result)
	}
	if !s.Msg.ReplaceOriginal {
		t.Error("page change does not replace the list")
	}
	// 3 devices on page two plus context and buttons.
	if len(s.Msg.Blocks.BlockSet) != 3*3+2 {
		t.Errorf("blocks = %d, want 11", len(s.Msg.Blocks.BlockSet))
	}
}

// TestDevicesPage_FromBlockAction drives a real block_actions callback.
func TestDevicesPage_FromBlockAction(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < render.DevicesPerPage+1; i++ {
		f.lister.snapshots = append(f.lister.snapshots, device.Snapshot{InstanceID: 100 + i, Kind: device.KindPlug})
	}

	ev, err := FromCallback(slack.InteractionCallback{
		Type:        slack.InteractionTypeBlockActions,
		ResponseURL: hookURL,
		User:        slack.User{ID: "U1"},
		ActionCallback: slack.ActionCallbacks{BlockActions: []*slack.BlockAction{{
			ActionID: "devices_page:next",
			Value:    "2",
		}}},
	})
	if err != nil {
		t.Fatalf("FromCallback() error = %v", err)
	}
	if _, ok := f.route(t, ev).(Ack); !ok {
		t.Fatal("block action should get an empty reply")
	}

	pushes := f.transport.all()
	if len(pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pushes))
	}
	if s, ok := pushes[0].result.(render.Structured); !ok || !s.Msg.ReplaceOriginal {
		t.Errorf("push = %#v, want replace-original device list", pushes[0].result)
	}
}

func TestDevicesPage_GatewayUnavailable(t *testing.T) {
	f := newFixture(t)
	f.lister.err = ErrGatewayUnavailable

	ev := Event{
		Type:        EventAction,
		CallbackID:  render.CallbackDevicesPage,
		ResponseURL: hookURL,
		Payload:     ActionPayload{Actions: []Action{{ActionID: "devices_page:prev", Value: "1"}}},
	}
	f.route(t, ev)

	pushes := f.transport.all()
	if len(pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pushes))
	}
	if got := textOf(t, pushes[0].result); !strings.Contains(got.Body, gatewayMessage) || !got.ReplaceOriginal {
		t.Errorf("push = %+v, want replace-original gateway message", got)
	}
}

func TestSlash_DeviceCommands(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"on 65537", "off 65537", "dim 65537 40", "dim 65537 75%"} {
		msg := messageOf(t, f.route(t, slashEvent(text)))
		if strings.Contains(msg.Text, "Usage") || strings.Contains(msg.Text, ":warning:") {
			t.Errorf("%q: reply = %q", text, msg.Text)
		}
	}

	if len(f.control.switches) != 2 || !f.control.switches[0].on || f.control.switches[1].on {
		t.Errorf("switches = %+v", f.control.switches)
	}
	if len(f.control.dims) != 2 || f.control.dims[0] != [2]int{65537, 40} || f.control.dims[1] != [2]int{65537, 75} {
		t.Errorf("dims = %+v", f.control.dims)
	}
}

func TestSlash_DeviceCommandErrors(t *testing.T) {
	tests := []struct {
		text string
		err  error
		want string
	}{
		{"on", nil, "Usage"},
		{"off lamp", nil, "not a device ID"},
		{"dim 1", nil, "Usage"},
		{"dim 1 bright", nil, "Usage"},
		{"on 9", device.ErrNotControllable, "can't be switched"},
		{"dim 9 150", device.ErrInvalidLevel, "between 0 and 100"},
		{"on 9", ErrGatewayUnavailable, gatewayMessage},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t)
			f.control.err = tt.err
			msg := messageOf(t, f.route(t, slashEvent(tt.text)))
			if !strings.Contains(msg.Text, tt.want) {
				t.Errorf("reply = %q, want %q", msg.Text, tt.want)
			}
		})
	}
}

func TestSlash_Kudos(t *testing.T) {
	f := newFixture(t)

	if _, ok := f.route(t, slashEvent("kudos")).(Ack); !ok {
		t.Error("kudos command should ack")
	}
	if f.dialogs.triggerID != "trig-1" || f.dialogs.dialog.CallbackID != render.CallbackKudos {
		t.Errorf("dialog opened with trigger %q callback %q", f.dialogs.triggerID, f.dialogs.dialog.CallbackID)
	}

	f.dialogs.err = errors.New("expired_trigger_id")
	msg := messageOf(t, f.route(t, slashEvent("kudos")))
	if !strings.Contains(msg.Text, render.GenericError) {
		t.Errorf("reply = %q, want generic error", msg.Text)
	}
}

func TestSlash_Policy(t *testing.T) {
	f := newFixture(t)

	msg := messageOf(t, f.route(t, slashEvent("policy")))
	if len(msg.Attachments) != 1 || msg.Attachments[0].CallbackID != render.CallbackPolicy || len(msg.Attachments[0].Actions) != 2 {
		t.Errorf("policy prompt = %+v", msg.Attachments)
	}
	if m, err := f.members.FindByID(context.Background(), "U1"); err != nil || m.DisplayName != "ada" {
		t.Errorf("member not registered: %+v, %v", m, err)
	}
}

func TestSlash_Neighborhood(t *testing.T) {
	f := newFixture(t)
	msg := messageOf(t, f.route(t, slashEvent("neighborhood")))
	if len(msg.Attachments) != 1 || msg.Attachments[0].Actions[0].DataSource != "external" {
		t.Errorf("neighborhood menu = %+v", msg.Attachments)
	}
}

func TestSlash_UsageAndUnknownCommand(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"help", "dance"} {
		msg := messageOf(t, f.route(t, slashEvent(text)))
		if !strings.HasPrefix(msg.Text, "Usage: `/lights <keyword>`") {
			t.Errorf("%q: reply = %q, want usage", text, msg.Text)
		}
	}

	ev := slashEvent("list")
	ev.CallbackID = "/lamps"
	if _, err := f.router.Route(context.Background(), ev); !errors.Is(err, ErrUnroutable) {
		t.Errorf("Route(/lamps) error = %v, want ErrUnroutable", err)
	}
}

func TestDeviceNote(t *testing.T) {
	f := newFixture(t)

	ev := Event{
		Type:        EventAction,
		CallbackID:  render.CallbackDeviceNote,
		User:        UserRef{ID: "U1"},
		ResponseURL: hookURL,
		Payload:     ActionPayload{Actions: []Action{{ActionID: render.DeviceNoteActionID(65537), Value: "bulb replaced"}}},
	}
	if _, ok := f.route(t, ev).(Ack); !ok {
		t.Error("note should ack")
	}

	if len(f.notes.saved) != 1 || f.notes.saved[0].InstanceID != 65537 || f.notes.saved[0].AuthorID != "U1" {
		t.Errorf("saved = %+v", f.notes.saved)
	}
	pushes := f.transport.all()
	if len(pushes) != 1 || !strings.Contains(textOf(t, pushes[0].result).Body, "65537") {
		t.Errorf("pushes = %+v", pushes)
	}
}

func TestUnhandledActionIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	ev := Event{Type: EventAction, CallbackID: "docs_link", Payload: ActionPayload{}}
	if _, ok := f.route(t, ev).(Ack); !ok {
		t.Error("unhandled action should ack")
	}
}

func TestUnknownDialogIsUnroutable(t *testing.T) {
	f := newFixture(t)
	ev := Event{Type: EventDialogSubmission, CallbackID: "survey", Payload: SubmissionPayload{}}
	if _, err := f.router.Route(context.Background(), ev); !errors.Is(err, ErrUnroutable) {
		t.Errorf("Route() error = %v, want ErrUnroutable", err)
	}
}
