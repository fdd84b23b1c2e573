package interaction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-chatops/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

func newBareRouter() (*Router, *recordingTransport) {
	tr := &recordingTransport{}
	return NewRouter(tr, logging.Discard()), tr
}

func replyWith(text string) Handler {
	return func(context.Context, Event) (Outcome, error) {
		return Now(render.Ephemeral(text)), nil
	}
}

func TestRouter_Unroutable(t *testing.T) {
	r, tr := newBareRouter()

	_, err := r.Route(context.Background(), Event{Type: EventAction, CallbackID: "nope"})
	if !errors.Is(err, ErrUnroutable) {
		t.Errorf("Route() error = %v, want ErrUnroutable", err)
	}
	if len(tr.all()) != 0 {
		t.Error("unroutable event produced a push")
	}
}

func TestRouter_ExactBeatsWildcard(t *testing.T) {
	r, _ := newBareRouter()
	r.Handle(EventAction, AnyCallback, replyWith("wildcard"))
	r.Handle(EventAction, "exact", replyWith("exact"))

	tests := []struct {
		callbackID string
		want       string
	}{
		{"exact", "exact"},
		{"other", "wildcard"},
	}
	for _, tt := range tests {
		reply, err := r.Route(context.Background(), Event{Type: EventAction, CallbackID: tt.callbackID})
		if err != nil {
			t.Fatalf("Route(%s) error = %v", tt.callbackID, err)
		}
		if got := reply.(Message).Msg.Text; got != tt.want {
			t.Errorf("Route(%s) = %q, want %q", tt.callbackID, got, tt.want)
		}
	}
}

func TestRouter_WildcardOnlyForActionsAndSubmissions(t *testing.T) {
	r, _ := newBareRouter()
	for _, et := range []EventType{EventAction, EventOptionsRequest, EventDialogSubmission, EventSlashCommand} {
		r.Handle(et, AnyCallback, replyWith("wildcard"))
	}

	tests := []struct {
		eventType EventType
		routable  bool
	}{
		{EventAction, true},
		{EventDialogSubmission, true},
		{EventOptionsRequest, false},
		{EventSlashCommand, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			_, err := r.Route(context.Background(), Event{Type: tt.eventType, CallbackID: "x"})
			if (err == nil) != tt.routable {
				t.Errorf("Route() error = %v, routable want %v", err, tt.routable)
			}
		})
	}
}

func TestRouter_ValidationErrorIsTheReply(t *testing.T) {
	r, tr := newBareRouter()
	r.Handle(EventDialogSubmission, "form", func(context.Context, Event) (Outcome, error) {
		return Outcome{}, &ValidationError{Fields: []render.FieldError{{Name: "comment", Message: "Required"}}}
	})

	reply, err := r.Route(context.Background(), Event{Type: EventDialogSubmission, CallbackID: "form"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	v, ok := reply.(Validation)
	if !ok || len(v.Errors.Errors) != 1 || v.Errors.Errors[0].Name != "comment" {
		t.Errorf("reply = %+v, want one comment validation error", reply)
	}
	r.Wait()
	if len(tr.all()) != 0 {
		t.Error("validation failure produced a push")
	}
}

func TestRouter_ImmediateErrorPropagates(t *testing.T) {
	r, _ := newBareRouter()
	boom := errors.New("boom")
	r.Handle(EventAction, "x", func(context.Context, Event) (Outcome, error) { return Outcome{}, boom })

	if _, err := r.Route(context.Background(), Event{Type: EventAction, CallbackID: "x"}); !errors.Is(err, boom) {
		t.Errorf("Route() error = %v, want boom", err)
	}
}

func TestRouter_ContinuationOrderAndDetachedContext(t *testing.T) {
	r, tr := newBareRouter()
	started := make(chan struct{})
	r.Handle(EventAction, "x", func(context.Context, Event) (Outcome, error) {
		return Later(render.Deferred{}, func(ctx context.Context, p Pusher) error {
			close(started)
			time.Sleep(10 * time.Millisecond)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			for _, s := range []string{"one", "two", "three"} {
				if err := p.Push(ctx, render.Ephemeral(s)); err != nil {
					return err
				}
			}
			return nil
		}), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	reply, err := r.Route(ctx, Event{Type: EventAction, CallbackID: "x", ResponseURL: "https://hooks.example/1"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if _, ok := reply.(Ack); !ok {
		t.Errorf("reply = %T, want Ack", reply)
	}

	<-started
	cancel()
	r.Wait()

	pushes := tr.all()
	if len(pushes) != 3 {
		t.Fatalf("pushes = %d, want 3", len(pushes))
	}
	for i, want := range []string{"one", "two", "three"} {
		if got := textOf(t, pushes[i].result).Body; got != want {
			t.Errorf("push %d = %q, want %q", i, got, want)
		}
		if pushes[i].url != "https://hooks.example/1" {
			t.Errorf("push %d url = %q", i, pushes[i].url)
		}
	}
}

func TestRouter_ContinuationFailureIsPushed(t *testing.T) {
	tests := []struct {
		name     string
		cont     Continuation
		wantText string
	}{
		{
			name:     "lookup failure",
			cont:     func(context.Context, Pusher) error { return ErrLookupFailure },
			wantText: render.GenericError,
		},
		{
			name:     "gateway unavailable",
			cont:     func(context.Context, Pusher) error { return ErrGatewayUnavailable },
			wantText: gatewayMessage,
		},
		{
			name:     "panic",
			cont:     func(context.Context, Pusher) error { panic("nil map") },
			wantText: render.GenericError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, tr := newBareRouter()
			r.Handle(EventAction, "x", func(context.Context, Event) (Outcome, error) {
				return Later(render.Deferred{}, tt.cont), nil
			})

			if _, err := r.Route(context.Background(), Event{Type: EventAction, CallbackID: "x", ResponseURL: "https://hooks.example/1"}); err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			r.Wait()

			pushes := tr.all()
			if len(pushes) != 1 {
				t.Fatalf("pushes = %d, want 1", len(pushes))
			}
			txt := textOf(t, pushes[0].result)
			if !strings.Contains(txt.Body, tt.wantText) || !txt.ReplaceOriginal {
				t.Errorf("error push = %+v, want replace-original containing %q", txt, tt.wantText)
			}
		})
	}
}

func TestRouter_NoResponseURL(t *testing.T) {
	r, tr := newBareRouter()
	r.Handle(EventAction, "x", func(context.Context, Event) (Outcome, error) {
		return Later(render.Deferred{}, func(ctx context.Context, p Pusher) error {
			return p.Push(ctx, render.Ephemeral("hi"))
		}), nil
	})

	if _, err := r.Route(context.Background(), Event{Type: EventAction, CallbackID: "x"}); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	r.Wait()
	if len(tr.all()) != 0 {
		t.Error("pushed without a response URL")
	}
}
