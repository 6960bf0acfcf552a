package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/bnema/taleweaver/internal/ports"
	"go.uber.org/zap"
)

var ErrEmptyAction = errors.New("player action is empty")

const DefaultHistoryTurns = 20

type NarratorOptions struct {
	DefaultModel string
	// HistoryTurns bounds how many earlier turns are sent as context. Zero means DefaultHistoryTurns.
	HistoryTurns int
}

// Narrator runs one story turn at a time: it records the player's action,
// asks the model for a continuation and records the narration.
type Narrator struct {
	store    *SessionStore
	streamer ports.CompletionStreamer
	opts     NarratorOptions
	logger   *zap.Logger
}

func NewNarrator(store *SessionStore, streamer ports.CompletionStreamer, opts NarratorOptions, logger *zap.Logger) *Narrator {
	if opts.DefaultModel == "" {
		opts.DefaultModel = domain.DefaultModel
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = DefaultHistoryTurns
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Narrator{store: store, streamer: streamer, opts: opts, logger: logger.Named("narrator")}
}

// Begin opens a session for play. A story with no turns yet starts with its opening line.
func (n *Narrator) Begin(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	session, ok := n.store.Get(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	if len(session.Dialogue) == 0 && strings.TrimSpace(session.InitialPrompt) != "" {
		return n.store.AppendTurn(ctx, id, domain.SpeakerNarrator, session.InitialPrompt)
	}

	if err := n.store.Touch(ctx, id); err != nil {
		return domain.Session{}, err
	}
	session, _ = n.store.Get(id)

	return session, nil
}

// PlayTurn blocks until the narration finished, failed or was cancelled.
// Tokens reach onToken as they stream in.
func (n *Narrator) PlayTurn(ctx context.Context, id domain.SessionID, action string, onToken func(string)) (domain.Session, ports.StreamResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.Session{}, ports.StreamResult{}, ErrEmptyAction
	}

	previous, ok := n.store.Get(id)
	if !ok {
		return domain.Session{}, ports.StreamResult{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	history := previous.RecentTurns(n.opts.HistoryTurns)

	persistCtx := context.WithoutCancel(ctx)
	session, err := n.store.AppendTurn(persistCtx, id, domain.SpeakerPlayer, action)
	if err != nil {
		return domain.Session{}, ports.StreamResult{}, err
	}

	model := session.ModelName
	if model == "" {
		model = n.opts.DefaultModel
	}
	n.streamer.SetModel(model)

	if onToken == nil {
		onToken = func(string) {}
	}
	done := make(chan ports.StreamResult, 1)
	if err := n.streamer.Start(ctx, domain.BuildPrompt(history, action), onToken, func(result ports.StreamResult) {
		done <- result
	}); err != nil {
		return session, ports.StreamResult{}, err
	}

	var result ports.StreamResult
	select {
	case result = <-done:
	case <-ctx.Done():
		n.streamer.Cancel()
		result = <-done
	}

	n.logger.Debug("turn finished",
		zap.String("session_id", string(id)),
		zap.String("model", model),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("chars", len(result.Text)),
	)

	if result.Text == "" {
		return session, result, nil
	}

	session, err = n.store.AppendTurn(persistCtx, id, domain.SpeakerNarrator, result.Text)
	if err != nil {
		return domain.Session{}, result, err
	}

	return session, result, nil
}

func (n *Narrator) Cancel() {
	n.streamer.Cancel()
}
