package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/constants"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// LockTimeout is the maximum duration to wait for acquiring a file lock.
const LockTimeout = 5 * time.Second

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validSessionIDRegex matches session ids (UUIDs and similar opaque ids).
// Anything else is rejected before touching the filesystem.
var validSessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// FileSessionStore implements SessionStore on the local filesystem.
// Layout: <home>/sessions/<id>/session.json plus an append-only
// history.jsonl. Writes are atomic (write-then-rename) and guarded by an
// exclusive flock so concurrent devplan processes can't interleave.
type FileSessionStore struct {
	home  string // Usually ~/.devplan
	clock clock.Clock
}

// Ensure FileSessionStore implements SessionStore.
var _ SessionStore = (*FileSessionStore)(nil)

// NewFileSessionStore creates a FileSessionStore rooted at home.
// If home is empty, uses the default ~/.devplan directory.
func NewFileSessionStore(home string) (*FileSessionStore, error) {
	return NewFileSessionStoreWithClock(home, clock.NewRealClock())
}

// NewFileSessionStoreWithClock creates a FileSessionStore with an injected
// clock for the UpdatedAt stamps written on Update.
func NewFileSessionStoreWithClock(home string, clk clock.Clock) (*FileSessionStore, error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		home = filepath.Join(userHome, constants.DevplanHome)
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &FileSessionStore{home: home, clock: clk}, nil
}

// Create persists a new session.
func (s *FileSessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("failed to create session: session %w", devplanerrors.ErrEmptyValue)
	}
	if err := validateSessionID(sess.ID); err != nil {
		return err
	}

	sessDir := s.sessionDir(sess.ID)
	if _, err := os.Stat(sessDir); err == nil {
		return fmt.Errorf("failed to create session '%s': %w", sess.ID, devplanerrors.ErrSessionExists)
	}

	if err := os.MkdirAll(sessDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	sess.SchemaVersion = constants.SessionSchemaVersion

	lockFile, err := s.acquireLock(ctx, sess.ID)
	if err != nil {
		_ = os.RemoveAll(sessDir)
		return fmt.Errorf("failed to create session '%s': %w", sess.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		_ = os.RemoveAll(sessDir)
		return fmt.Errorf("failed to create session '%s': %w", sess.ID, err)
	}

	if err := atomicWrite(s.sessionFilePath(sess.ID), data); err != nil {
		_ = os.RemoveAll(sessDir)
		return fmt.Errorf("failed to create session '%s': %w", sess.ID, err)
	}
	return nil
}

// Get retrieves a session by id.
func (s *FileSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.sessionDir(id)); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to get session '%s': %w", id, devplanerrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session '%s': %w", id, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := os.ReadFile(s.sessionFilePath(id)) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get session '%s': %w", id, devplanerrors.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to read session '%s': %w", id, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session '%s': %w", id, devplanerrors.ErrSessionCorrupted)
	}
	return &sess, nil
}

// Update saves the current session state (atomic write).
func (s *FileSessionStore) Update(ctx context.Context, sess *domain.Session) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("failed to update session: session %w", devplanerrors.ErrEmptyValue)
	}
	if err := validateSessionID(sess.ID); err != nil {
		return err
	}

	if _, err := os.Stat(s.sessionDir(sess.ID)); os.IsNotExist(err) {
		return fmt.Errorf("failed to update session '%s': %w", sess.ID, devplanerrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to update session '%s': %w", sess.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	sess.UpdatedAt = s.clock.Now().UTC()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update session '%s': %w", sess.ID, err)
	}

	if err := atomicWrite(s.sessionFilePath(sess.ID), data); err != nil {
		return fmt.Errorf("failed to update session '%s': %w", sess.ID, err)
	}
	return nil
}

// AppendHistory appends one entry to the session's history log
// (JSON-lines format).
func (s *FileSessionStore) AppendHistory(ctx context.Context, id string, entry *domain.HistoryEntry) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateSessionID(id); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("failed to append history: entry %w", devplanerrors.ErrEmptyValue)
	}

	if _, err := os.Stat(s.sessionDir(id)); os.IsNotExist(err) {
		return fmt.Errorf("failed to append history: session '%s' %w", id, devplanerrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.historyFilePath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync history: %w", err)
	}
	return nil
}

// History returns all history entries for a session, oldest first.
// A session with no history yet returns an empty slice.
func (s *FileSessionStore) History(ctx context.Context, id string) ([]*domain.HistoryEntry, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.sessionDir(id)); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read history: session '%s' %w", id, devplanerrors.ErrSessionNotFound)
	}

	f, err := os.Open(s.historyFilePath(id)) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []*domain.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse history for '%s': %w", id, devplanerrors.ErrSessionCorrupted)
		}
		entries = append(entries, &entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	return entries, nil
}

// List returns all readable sessions, in directory order. Unreadable or
// corrupted entries are skipped so one bad session cannot hide the rest.
func (s *FileSessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(s.sessionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Session{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.IsDir() || validateSessionID(de.Name()) != nil {
			continue
		}
		sess, gerr := s.Get(ctx, de.Name())
		if gerr != nil {
			if ctx.Err() != nil {
				return nil, gerr
			}
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// validateSessionID rejects empty ids and anything that could escape the
// sessions directory.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id %w", devplanerrors.ErrEmptyValue)
	}
	if !validSessionIDRegex.MatchString(id) {
		return fmt.Errorf("session id %q: %w", id, devplanerrors.ErrPathTraversal)
	}
	return nil
}

// Helper methods for path construction

// sessionsDir returns the path to the sessions directory.
func (s *FileSessionStore) sessionsDir() string {
	return filepath.Join(s.home, constants.SessionsDir)
}

// sessionDir returns the path to a specific session's directory.
func (s *FileSessionStore) sessionDir(id string) string {
	return filepath.Join(s.sessionsDir(), id)
}

// sessionFilePath returns the path to a session's JSON file.
func (s *FileSessionStore) sessionFilePath(id string) string {
	return filepath.Join(s.sessionDir(id), constants.SessionFileName)
}

// historyFilePath returns the path to a session's history file.
func (s *FileSessionStore) historyFilePath(id string) string {
	return filepath.Join(s.sessionDir(id), constants.HistoryFileName)
}

// lockFilePath returns the path to a session's lock file.
func (s *FileSessionStore) lockFilePath(id string) string {
	return filepath.Join(s.sessionDir(id), constants.SessionFileName+".lock")
}

// acquireLock acquires an exclusive file lock for the session.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileSessionStore) acquireLock(ctx context.Context, id string) (*os.File, error) {
	if err := os.MkdirAll(s.sessionDir(id), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockFilePath(id), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed from validated id
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		// LOCK_EX = exclusive lock, LOCK_NB = non-blocking
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", devplanerrors.ErrLockTimeout)
		}

		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases a file lock.
func (s *FileSessionStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Ensure data is persisted before rename
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
