// Package neighborhood is the registry of neighborhoods members can pick
// from. It answers exact lookups by ID and fuzzy lookups by free text for
// select-menu autocomplete.
package neighborhood
