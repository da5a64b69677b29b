package curator

import "errors"

var (
	ErrNotEnoughNotes  = errors.New("at least two notes are required to merge")
	ErrNoNoteLoaded    = errors.New("no note loaded")
	ErrUnknownView     = errors.New("unknown view")
	ErrIndexOutOfRange = errors.New("index out of range")
)
