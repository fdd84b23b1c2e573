package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/slack-go/slack"

	"github.com/nerrad567/gray-logic-chatops/internal/device"
	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-chatops/internal/member"
	"github.com/nerrad567/gray-logic-chatops/internal/neighborhood"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

type push struct {
	url    string
	result render.Result
}

type recordingTransport struct {
	mu     sync.Mutex
	pushes []push
	err    error
}

func (r *recordingTransport) Push(_ context.Context, url string, res render.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, push{url: url, result: res})
	return r.err
}

func (r *recordingTransport) all() []push {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]push(nil), r.pushes...)
}

type fakeMembers struct {
	mu       sync.Mutex
	members  map[string]*member.Member
	setErr   error
	kudosErr error
}

func newFakeMembers(ms ...*member.Member) *fakeMembers {
	f := &fakeMembers{members: make(map[string]*member.Member)}
	for _, m := range ms {
		f.members[m.ID] = m
	}
	return f
}

func (f *fakeMembers) Register(_ context.Context, m *member.Member) (*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.members[m.ID]; ok {
		existing.DisplayName = m.DisplayName
		return existing, nil
	}
	cp := *m
	f.members[m.ID] = &cp
	return &cp, nil
}

func (f *fakeMembers) FindByID(_ context.Context, id string) (*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeMembers) SetPolicyAgreement(_ context.Context, id string, agreed bool) (*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return nil, f.setErr
	}
	m, ok := f.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	m.PolicyAgreed = &agreed
	return m, nil
}

func (f *fakeMembers) IncrementKudos(_ context.Context, receiverID, _, _ string) (*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kudosErr != nil {
		return nil, f.kudosErr
	}
	m, ok := f.members[receiverID]
	if !ok {
		m = &member.Member{ID: receiverID}
		f.members[receiverID] = m
	}
	m.KudosCount++
	return m, nil
}

type fakeNeighborhoods struct {
	all []neighborhood.Neighborhood
	err error
}

func (f *fakeNeighborhoods) FindByID(_ context.Context, id string) (*neighborhood.Neighborhood, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.all {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, neighborhood.ErrNeighborhoodNotFound
}

func (f *fakeNeighborhoods) FuzzyFind(_ context.Context, _ string, limit int) ([]neighborhood.Neighborhood, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.all[:min(limit, len(f.all))], nil
}

type fakeLister struct {
	snapshots []device.Snapshot
	err       error
}

func (f *fakeLister) Snapshots(context.Context) ([]device.Snapshot, error) {
	return f.snapshots, f.err
}

type switchCall struct {
	id int
	on bool
}

type fakeController struct {
	switches []switchCall
	dims     [][2]int
	err      error
}

func (f *fakeController) Switch(_ context.Context, id int, on bool) (device.Kind, error) {
	if f.err != nil {
		return device.KindUnknown, f.err
	}
	f.switches = append(f.switches, switchCall{id, on})
	return device.KindLight, nil
}

func (f *fakeController) Dim(_ context.Context, id, percent int) error {
	if f.err != nil {
		return f.err
	}
	f.dims = append(f.dims, [2]int{id, percent})
	return nil
}

type fakeNotes struct {
	mu    sync.Mutex
	saved []device.Note
}

func (f *fakeNotes) SaveNote(_ context.Context, n device.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.Text == "" {
		return device.ErrEmptyNote
	}
	f.saved = append(f.saved, n)
	return nil
}

type fakeDialogs struct {
	triggerID string
	dialog    slack.Dialog
	err       error
}

func (f *fakeDialogs) OpenDialogContext(_ context.Context, triggerID string, d slack.Dialog) error {
	f.triggerID = triggerID
	f.dialog = d
	return f.err
}

var errStore = errors.New("database is locked")

type fixture struct {
	router        *Router
	transport     *recordingTransport
	members       *fakeMembers
	neighborhoods *fakeNeighborhoods
	lister        *fakeLister
	control       *fakeController
	notes         *fakeNotes
	dialogs       *fakeDialogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		transport:     &recordingTransport{},
		members:       newFakeMembers(),
		neighborhoods: &fakeNeighborhoods{},
		lister:        &fakeLister{},
		control:       &fakeController{},
		notes:         &fakeNotes{},
		dialogs:       &fakeDialogs{},
	}
	logger := logging.Discard()
	f.router = NewRouter(f.transport, logger)

	h := &Handlers{
		Members:       f.members,
		Neighborhoods: f.neighborhoods,
		Devices:       f.lister,
		Control:       f.control,
		Notes:         f.notes,
		Dialogs:       f.dialogs,
		Command:       "/lights",
		PolicyURL:     "https://example.org/policy",
		Logger:        logger,
	}
	h.Register(f.router)
	return f
}

// route sends ev and waits for its continuation to finish.
func (f *fixture) route(t *testing.T, ev Event) Immediate {
	t.Helper()
	reply, err := f.router.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	f.router.Wait()
	return reply
}

func textOf(t *testing.T, r render.Result) render.Text {
	t.Helper()
	txt, ok := r.(render.Text)
	if !ok {
		t.Fatalf("result = %T, want render.Text", r)
	}
	return txt
}

func messageOf(t *testing.T, i Immediate) slack.Msg {
	t.Helper()
	m, ok := i.(Message)
	if !ok {
		t.Fatalf("reply = %T, want Message", i)
	}
	return m.Msg
}
