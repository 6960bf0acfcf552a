package ports

import (
	"time"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type IDGenerator interface {
	NewID() domain.SessionID
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() domain.SessionID {
	return domain.SessionID(uuid.NewString())
}
