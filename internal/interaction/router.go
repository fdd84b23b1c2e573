package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-chatops/internal/render"
)

// AnyCallback registers a fallback for every callback ID of an event type.
// It is honoured for actions and dialog submissions only.
const AnyCallback = "*"

// Handler processes one event. Returning a *ValidationError makes the
// validation errors the immediate reply; any other error is an
// immediate-path failure.
type Handler func(ctx context.Context, ev Event) (Outcome, error)

// Transport sends a rendered result to a response URL.
type Transport interface {
	Push(ctx context.Context, responseURL string, r render.Result) error
}

// Logger is the subset of logging.Logger the router needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type routeKey struct {
	eventType  EventType
	callbackID string
}

// Router dispatches events and runs their continuations.
type Router struct {
	routes    map[routeKey]Handler
	transport Transport
	logger    Logger
	wg        sync.WaitGroup
}

// NewRouter creates a Router that pushes through transport.
func NewRouter(transport Transport, logger Logger) *Router {
	return &Router{
		routes:    make(map[routeKey]Handler),
		transport: transport,
		logger:    logger,
	}
}

// Handle registers h for (t, callbackID). Registering twice replaces the
// handler. Routes must be registered before the first call to Route.
func (r *Router) Handle(t EventType, callbackID string, h Handler) {
	r.routes[routeKey{t, callbackID}] = h
}

func (r *Router) lookup(ev Event) (Handler, bool) {
	if h, ok := r.routes[routeKey{ev.Type, ev.CallbackID}]; ok {
		return h, true
	}
	if ev.Type == EventAction || ev.Type == EventDialogSubmission {
		h, ok := r.routes[routeKey{ev.Type, AnyCallback}]
		return h, ok
	}
	return nil, false
}

// Route runs the matching handler and returns its immediate reply.
// The continuation, if any, is started before Route returns and keeps
// running after ctx is cancelled.
func (r *Router) Route(ctx context.Context, ev Event) (Immediate, error) {
	h, ok := r.lookup(ev)
	if !ok {
		r.logger.Warn("unroutable interaction", "type", ev.Type, "callback_id", ev.CallbackID, "user", ev.User.ID)
		return nil, fmt.Errorf("%w: %s/%s", ErrUnroutable, ev.Type, ev.CallbackID)
	}

	out, err := h(ctx, ev)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			r.logger.Debug("interaction rejected by validation", "callback_id", ev.CallbackID, "fields", verr.Error())
			return Reply(render.Validation(verr.Fields...)), nil
		}
		return nil, fmt.Errorf("handling %s/%s: %w", ev.Type, ev.CallbackID, err)
	}

	if out.Reply == nil {
		out.Reply = Ack{}
	}
	if out.Continuation != nil {
		r.spawn(context.WithoutCancel(ctx), ev, out.Continuation)
	}
	return out.Reply, nil
}

// Wait blocks until every started continuation has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) spawn(ctx context.Context, ev Event, c Continuation) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runContinuation(ctx, ev, c)
	}()
}

// runContinuation is the single place deferred failures are handled.
func (r *Router) runContinuation(ctx context.Context, ev Event, c Continuation) {
	push := &eventPusher{transport: r.transport, responseURL: ev.ResponseURL}

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("continuation panic: %v", p)
			}
		}()
		return c(ctx, push)
	}()
	if err == nil {
		return
	}

	r.logger.Error("interaction continuation failed",
		"type", ev.Type, "callback_id", ev.CallbackID, "user", ev.User.ID, "error", err)

	if ev.ResponseURL == "" {
		return
	}
	if perr := push.Push(ctx, render.Error(userMessage(err))); perr != nil {
		r.logger.Error("pushing error reply", "callback_id", ev.CallbackID, "error", perr)
	}
}

type eventPusher struct {
	transport   Transport
	responseURL string
}

func (p *eventPusher) Push(ctx context.Context, res render.Result) error {
	if p.responseURL == "" {
		return fmt.Errorf("%w: no response URL", ErrMalformedEvent)
	}
	return p.transport.Push(ctx, p.responseURL, res)
}
