package member

import "errors"

var (
	// ErrMemberNotFound is returned when a member ID does not exist.
	ErrMemberNotFound = errors.New("member: not found")

	// ErrInvalidMember is returned when a member ID is empty.
	ErrInvalidMember = errors.New("member: invalid")

	// ErrEmptyComment is returned when kudos are given without a comment.
	ErrEmptyComment = errors.New("member: kudos comment is empty")
)
