package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/bnema/taleweaver/internal/ports"
	"go.uber.org/zap"
)

// SessionStore is the registry of all sessions. Every mutation is persisted
// through the repository before the registry changes and observers are told.
type SessionStore struct {
	repo   ports.SessionRepository
	clock  ports.Clock
	ids    ports.IDGenerator
	logger *zap.Logger

	mu       sync.RWMutex
	sessions []domain.Session

	observersMu  sync.RWMutex
	observers    map[uint64]Observer
	nextObserver uint64
}

func NewSessionStore(repo ports.SessionRepository, clock ports.Clock, ids ports.IDGenerator, logger *zap.Logger) *SessionStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ids == nil {
		ids = ports.UUIDGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionStore{
		repo:      repo,
		clock:     clock,
		ids:       ids,
		logger:    logger.Named("store"),
		observers: map[uint64]Observer{},
	}
}

// LoadAll replaces the registry with every readable record, most recently played first.
func (s *SessionStore) LoadAll(ctx context.Context) error {
	listing, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("load sessions failed", zap.Error(err))
		return fmt.Errorf("list sessions: %w", err)
	}

	for _, skipped := range listing.Skipped {
		s.logger.Warn("skipping unreadable session record", zap.String("record", skipped.Name), zap.Error(skipped.Err))
	}

	sessions := make([]domain.Session, 0, len(listing.Sessions))
	seen := make(map[domain.SessionID]struct{}, len(listing.Sessions))
	for _, session := range listing.Sessions {
		if _, ok := seen[session.ID]; ok {
			s.logger.Warn("skipping duplicate session record", zap.String("session_id", string(session.ID)))
			continue
		}
		seen[session.ID] = struct{}{}
		sessions = append(sessions, session.Clone())
	}
	domain.SortByLastPlayedDesc(sessions)

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()

	s.logger.Info("sessions loaded", zap.Int("count", len(sessions)), zap.Int("skipped", len(listing.Skipped)))

	return nil
}

// Create persists a new empty session. The registry is left untouched when persistence fails.
func (s *SessionStore) Create(ctx context.Context, title, description, modelName string) (domain.Session, error) {
	now := domain.NormalizeTime(s.clock.Now())
	session := domain.Session{
		ID:           s.ids.NewID(),
		Title:        title,
		Description:  description,
		ModelName:    modelName,
		CreatedAt:    now,
		LastPlayedAt: now,
	}

	s.mu.Lock()
	if s.indexOf(session.ID) >= 0 {
		s.mu.Unlock()
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionExists, session.ID)
	}
	if err := s.repo.Save(ctx, session); err != nil {
		s.mu.Unlock()
		s.logger.Error("persist new session failed", zap.String("session_id", string(session.ID)), zap.Error(err))
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session_id", string(session.ID)))
	s.notify(SessionEvent{Op: SessionCreated, ID: session.ID, Session: session.Clone()})

	return session.Clone(), nil
}

func (s *SessionStore) Get(id domain.SessionID) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Session{}, false
	}

	return s.sessions[idx].Clone(), true
}

// List returns a copy of the registry in its current order.
func (s *SessionStore) List() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}

	return sessions
}

// Update replaces the stored session with the same id. Unknown ids are ignored.
func (s *SessionStore) Update(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	idx := s.indexOf(session.ID)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Debug("ignoring update of unknown session", zap.String("session_id", string(session.ID)))
		return nil
	}
	updated, err := s.replaceLocked(ctx, idx, session)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(SessionEvent{Op: SessionUpdated, ID: updated.ID, Session: updated})

	return nil
}

// AppendTurn adds a turn stamped with the current time and persists the session.
func (s *SessionStore) AppendTurn(ctx context.Context, id domain.SessionID, speaker domain.Speaker, message string) (domain.Session, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	next := s.sessions[idx].Clone()
	if err := next.AppendTurn(speaker, message, s.clock.Now()); err != nil {
		s.mu.Unlock()
		return domain.Session{}, err
	}

	updated, err := s.replaceLocked(ctx, idx, next)
	s.mu.Unlock()
	if err != nil {
		return domain.Session{}, err
	}

	s.notify(SessionEvent{Op: SessionUpdated, ID: updated.ID, Session: updated})

	return updated.Clone(), nil
}

// Touch marks the session as played now. Unknown ids are ignored.
func (s *SessionStore) Touch(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	next := s.sessions[idx].Clone()
	next.MarkPlayed(s.clock.Now())

	updated, err := s.replaceLocked(ctx, idx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(SessionEvent{Op: SessionUpdated, ID: updated.ID, Session: updated})

	return nil
}

// Delete removes the session and its record. Unknown ids are ignored.
func (s *SessionStore) Delete(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.mu.Unlock()
		s.logger.Error("delete session record failed", zap.String("session_id", string(id)), zap.Error(err))
		return fmt.Errorf("delete session: %w", err)
	}
	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	s.mu.Unlock()

	s.logger.Debug("session deleted", zap.String("session_id", string(id)))
	s.notify(SessionEvent{Op: SessionDeleted, ID: id})

	return nil
}

// Subscribe registers an observer and returns the function that removes it.
func (s *SessionStore) Subscribe(observer Observer) func() {
	s.observersMu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = observer
	s.observersMu.Unlock()

	return func() {
		s.observersMu.Lock()
		delete(s.observers, id)
		s.observersMu.Unlock()
	}
}

// replaceLocked persists session in place of the entry at idx once it passes the update rules.
// Callers must hold s.mu.
func (s *SessionStore) replaceLocked(ctx context.Context, idx int, session domain.Session) (domain.Session, error) {
	current := s.sessions[idx]
	if !domain.ExtendsDialogue(current.Dialogue, session.Dialogue) {
		return domain.Session{}, fmt.Errorf("%w: session %s", domain.ErrDialogueRewritten, session.ID)
	}

	next := session.Clone()
	next.CreatedAt = current.CreatedAt
	next.LastPlayedAt = domain.NormalizeTime(next.LastPlayedAt)
	if current.LastPlayedAt.After(next.LastPlayedAt) {
		next.LastPlayedAt = current.LastPlayedAt
	}
	for i := range next.Dialogue {
		next.Dialogue[i].Timestamp = domain.NormalizeTime(next.Dialogue[i].Timestamp)
	}
	if err := next.Validate(); err != nil {
		return domain.Session{}, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("persist session failed", zap.String("session_id", string(next.ID)), zap.Error(err))
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.sessions[idx] = next

	return next.Clone(), nil
}

func (s *SessionStore) indexOf(id domain.SessionID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}

	return -1
}

func (s *SessionStore) notify(event SessionEvent) {
	s.observersMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.observersMu.RUnlock()

	for _, observer := range observers {
		s.deliver(observer, event)
	}
}

func (s *SessionStore) deliver(observer Observer, event SessionEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session observer panicked", zap.String("op", string(event.Op)), zap.Any("panic", r))
		}
	}()

	observer.OnSessionChange(event)
}
