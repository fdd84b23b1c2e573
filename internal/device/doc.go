// Package device turns raw gateway records into uniform display snapshots.
//
// Normalize is the pure classification step. Reader wraps the whole listing
// flow: connect, observe, settle, enumerate, normalize.
package device
