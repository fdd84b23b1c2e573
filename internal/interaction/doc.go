// Package interaction routes inbound chat interactions to handlers and
// enforces the two-phase reply contract.
//
// The chat platform waits only a few seconds for an HTTP response. Every
// handler therefore returns an Outcome: an Immediate reply, which the HTTP
// layer writes at once, and an optional Continuation, which the Router runs
// on its own goroutine after the reply is sent. Continuations deliver their
// results through a Pusher bound to the event's response URL. A
// continuation that fails is turned into a rendered error push at the
// Router; handlers never push an error themselves after a final reply.
//
// Events are routed by (EventType, callback ID). Handlers registers:
//
//	action            policy_agreement  neighborhood  devices_page  device_note  *
//	options_request   neighborhood
//	dialog_submission kudos
//	slash_command     /lights
//
// The Router honours AnyCallback for action and dialog_submission only;
// an unknown dialog is ErrUnroutable.
package interaction
