package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/bnema/taleweaver/internal/fsutil"
	"github.com/bnema/taleweaver/internal/ports"
)

const (
	// SavesDirName is the subdirectory of the data directory that holds session records.
	SavesDirName = "GameSaves"

	recordExt       = ".json"
	recordFileMode  = 0o600
	savesDirMode    = 0o700
	tempFilePattern = ".session-*.json.tmp"
)

// ErrRecordIDMismatch marks a record whose id does not match its file name.
var ErrRecordIDMismatch = errors.New("session id does not match file name")

// Repository stores one pretty-printed JSON document per session, named <id>.json.
type Repository struct {
	root string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(root string) (*Repository, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("sessions directory is empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sessions directory: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	return &Repository{root: absRoot, mu: lockForPath(absRoot)}, nil
}

func (r *Repository) Root() string {
	return r.root
}

func (r *Repository) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return err
	}

	path, err := r.pathForID(session.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(toSchema(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %q: %w", session.ID, err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeFile(path, data)
}

func (r *Repository) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	path, err := r.pathForID(id)
	if err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, err := readRecord(path, id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, err
	}

	return session, nil
}

func (r *Repository) Delete(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.pathForID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session %q: %w", id, err)
	}

	return nil
}

func (r *Repository) List(ctx context.Context) (ports.SessionListing, error) {
	if err := ctx.Err(); err != nil {
		return ports.SessionListing{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.SessionListing{}, nil
		}
		return ports.SessionListing{}, fmt.Errorf("read sessions directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var listing ports.SessionListing
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return ports.SessionListing{}, err
		}

		session, err := readRecord(filepath.Join(r.root, name), domain.SessionID(strings.TrimSuffix(name, recordExt)))
		if err != nil {
			listing.Skipped = append(listing.Skipped, ports.SkippedRecord{Name: name, Err: err})
			continue
		}
		listing.Sessions = append(listing.Sessions, session)
	}

	return listing, nil
}

// readRecord decodes the record at path. Its id must equal want, the id the file name encodes.
func readRecord(path string, want domain.SessionID) (domain.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, err
		}
		return domain.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var record sessionSchema
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Session{}, fmt.Errorf("decode session file %s: %w", filepath.Base(path), err)
	}

	session := fromSchema(record)
	if err := session.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("decode session file %s: %w", filepath.Base(path), err)
	}
	if session.ID != want {
		return domain.Session{}, fmt.Errorf("decode session file %s: %w: found %q", filepath.Base(path), ErrRecordIDMismatch, session.ID)
	}

	return session, nil
}

func (r *Repository) pathForID(id domain.SessionID) (string, error) {
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return "", fmt.Errorf("%w: id is empty", domain.ErrInvalidSessionID)
	}
	if trimmed != string(id) || strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." || strings.HasPrefix(trimmed, ".") {
		return "", fmt.Errorf("%w %q", domain.ErrInvalidSessionID, id)
	}

	return filepath.Join(r.root, trimmed+recordExt), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeFile(path string, data []byte) error {
	err := fsutil.WriteAtomic(path, data, fsutil.AtomicFile{
		Pattern:  tempFilePattern,
		FileMode: recordFileMode,
		DirMode:  savesDirMode,
	})
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}
