package domain

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidSessionID  = errors.New("invalid session id")
	ErrInvalidSpeaker    = errors.New("invalid speaker")
	ErrDialogueRewritten = errors.New("dialogue is append-only")
	ErrSessionExists     = errors.New("session already exists")
)
