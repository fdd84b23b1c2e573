// Package render turns handler results into Slack payloads.
//
// Every function here is pure. The same Result renders identically whether
// it is returned as the immediate HTTP body or pushed later to a
// response_url, so a deferred reply always matches what the handler computed.
package render
