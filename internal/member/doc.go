// Package member persists chat platform members: their policy answer and
// the kudos they have received.
//
// Members are keyed by the platform's user ID. Rows are created on first
// contact (Register, or when a member first receives kudos) and never deleted
// by this service.
package member
