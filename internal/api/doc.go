// Package api implements the HTTP surface of Gray Logic ChatOps.
//
// This package provides:
//   - Slack endpoints for interactive actions, select-menu options and slash commands
//   - Request signature verification on every Slack endpoint
//   - A webhook transport that delivers deferred replies to response URLs
//   - Dashboard endpoints for health, device listing, member kudos and a live
//     WebSocket device feed, behind bearer-token auth (health is public)
//   - Middleware stack (request ID, logging, recovery, body size limit, CORS)
//
// # Architecture
//
// Slack posts interactions here. Each is converted to an interaction.Event
// and handed to the interaction router; the immediate reply becomes the HTTP
// response body, and deferred replies are posted back to the event's response
// URL through WebhookTransport.
//
// Requests that fail signature verification, and slash commands this service
// does not answer, get 404 with no body.
package api
