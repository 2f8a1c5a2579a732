package service

import "errors"

// Every mutation entry point returns one of these (or a wrapped store
// error); the transport layer decides how to surface it.
var (
	ErrEmptyContent   = errors.New("content is required")
	ErrEmptyName      = errors.New("name is required")
	ErrMuted          = errors.New("sender is muted")
	ErrBanned         = errors.New("sender is banned")
	ErrForbidden      = errors.New("not allowed")
	ErrNotSender      = errors.New("only the sender can edit this message")
	ErrNotCreator     = errors.New("only the creator can delete this")
	ErrNotParticipant = errors.New("not a participant of this room")
	ErrNotImage       = errors.New("payload is not an inline-encoded image")
	ErrImageTooLarge  = errors.New("image exceeds the 5MB limit")
)
