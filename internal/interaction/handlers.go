package interaction

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
	"github.com/nerrad567/gray-logic-chatops/internal/neighborhood"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// MemberStore is the member persistence the handlers use.
type MemberStore interface {
	Register(ctx context.Context, m *member.Member) (*member.Member, error)
	FindByID(ctx context.Context, id string) (*member.Member, error)
	SetPolicyAgreement(ctx context.Context, id string, agreed bool) (*member.Member, error)
	IncrementKudos(ctx context.Context, receiverID, giverID, comment string) (*member.Member, error)
}

// NeighborhoodStore is the neighborhood lookup the handlers use.
type NeighborhoodStore interface {
	FindByID(ctx context.Context, id string) (*neighborhood.Neighborhood, error)
	FuzzyFind(ctx context.Context, text string, limit int) ([]neighborhood.Neighborhood, error)
}

// DeviceLister produces the snapshots for a device listing.
type DeviceLister interface {
	Snapshots(ctx context.Context) ([]device.Snapshot, error)
}

// DeviceController applies slash command device changes.
type DeviceController interface {
	Switch(ctx context.Context, instanceID int, on bool) (device.Kind, error)
	Dim(ctx context.Context, instanceID, percent int) error
}

// NoteStore saves device notes.
type NoteStore interface {
	SaveNote(ctx context.Context, n device.Note) error
}

// DialogOpener opens a dialog for a trigger ID. *slack.Client satisfies it.
type DialogOpener interface {
	OpenDialogContext(ctx context.Context, triggerID string, dialog slack.Dialog) error
}

// Handlers holds the collaborators of every command handler.
type Handlers struct {
	Members       MemberStore
	Neighborhoods NeighborhoodStore
	Devices       DeviceLister
	Control       DeviceController
	Notes         NoteStore
	Dialogs       DialogOpener

	// Command is the slash command answered, e.g. "/lights".
	Command   string
	PolicyURL string

	Logger Logger
}

// Register wires every handler into r.
func (h *Handlers) Register(r *Router) {
	r.Handle(EventAction, render.CallbackPolicy, h.policyAgreement)
	r.Handle(EventOptionsRequest, render.CallbackNeighborhood, h.neighborhoodOptions)
	r.Handle(EventAction, render.CallbackNeighborhood, h.neighborhoodSelected)
	r.Handle(EventDialogSubmission, render.CallbackKudos, h.kudosSubmitted)
	r.Handle(EventAction, render.CallbackDevicesPage, h.devicesPage)
	r.Handle(EventAction, render.CallbackDeviceNote, h.deviceNote)
	r.Handle(EventAction, AnyCallback, h.acknowledge)
	r.Handle(EventSlashCommand, h.Command, h.slashCommand)
}

// acknowledge accepts actions nothing else handles, such as link buttons,
// so the platform does not show the user an error.
func (h *Handlers) acknowledge(_ context.Context, ev Event) (Outcome, error) {
	h.Logger.Debug("acknowledging unhandled action", "callback_id", ev.CallbackID, "user", ev.User.ID)
	return Outcome{Reply: Ack{}}, nil
}
