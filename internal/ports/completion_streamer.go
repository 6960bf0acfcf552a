package ports

import (
	"context"
	"errors"
)

// ErrStreamActive is returned by Start while a previous stream has not completed.
var ErrStreamActive = errors.New("a completion stream is already active")

type StreamOutcome string

const (
	StreamCompleted StreamOutcome = "completed"
	StreamFailed    StreamOutcome = "failed"
	StreamCancelled StreamOutcome = "cancelled"
)

// StreamResult is delivered exactly once per started stream.
type StreamResult struct {
	Outcome StreamOutcome
	Text    string
	Err     error
}

type CompletionStreamer interface {
	SetModel(name string)
	Model() string
	Start(ctx context.Context, prompt string, onToken func(string), onComplete func(StreamResult)) error
	Cancel()
}

type ModelLister interface {
	ListAvailableModels(ctx context.Context) []string
}
