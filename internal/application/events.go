package application

import "github.com/bnema/taleweaver/internal/domain"

type SessionOp string

const (
	SessionCreated SessionOp = "created"
	SessionUpdated SessionOp = "updated"
	SessionDeleted SessionOp = "deleted"
)

// SessionEvent describes a committed change. Session is the zero value for deletions.
type SessionEvent struct {
	Op      SessionOp
	ID      domain.SessionID
	Session domain.Session
}

type Observer interface {
	OnSessionChange(event SessionEvent)
}

type ObserverFunc func(event SessionEvent)

func (f ObserverFunc) OnSessionChange(event SessionEvent) {
	f(event)
}
