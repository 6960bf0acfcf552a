package ports

import (
	"context"

	"github.com/bnema/taleweaver/internal/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id domain.SessionID) (domain.Session, error)
	Delete(ctx context.Context, id domain.SessionID) error
	List(ctx context.Context) (SessionListing, error)
}

// SessionListing is the result of enumerating stored sessions. Records that
// could not be decoded are reported in Skipped instead of failing the listing.
type SessionListing struct {
	Sessions []domain.Session
	Skipped  []SkippedRecord
}

type SkippedRecord struct {
	Name string
	Err  error
}
