// Package local implements the authoritative persistence layer as a single
// JSON file on disk. All repositories in this package share one Store and
// serialize access through its mutex, so concurrent use from HTTP handlers
// is safe. Writes go through a temp file plus rename to keep the file whole
// even if the process dies mid-save.
package local

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"procure/internal/domain/entity"

	"github.com/pkg/errors"
)

// fileState is the on-disk document. Credentials map user IDs to password
// hash blobs, ResetTokens and TwoFactor are keyed by token and user ID.
type fileState struct {
	Users       []*entity.User                         `json:"users"`
	Credentials map[string]*entity.Credential          `json:"credentials"`
	Session     *entity.Session                        `json:"session,omitempty"`
	ResetTokens map[string]*entity.ResetToken          `json:"resetTokens"`
	TwoFactor   map[string]*entity.TwoFactorEnrollment `json:"twoFactor"`
}

func newFileState() *fileState {
	return &fileState{
		Users:       []*entity.User{},
		Credentials: map[string]*entity.Credential{},
		ResetTokens: map[string]*entity.ResetToken{},
		TwoFactor:   map[string]*entity.TwoFactorEnrollment{},
	}
}

// Store owns the JSON file and hands out repository views over it.
type Store struct {
	path  string
	mu    sync.Mutex
	state *fileState
}

// NewStore opens or creates the JSON file at path.
func NewStore(path string) (*Store, error) {
	store := &Store{path: path, state: newFileState()}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, store.state); err != nil {
			return nil, errors.Wrapf(err, "parse store file %s", path)
		}
		store.normalize()
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create store directory")
		}
		if err := store.save(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(err, "read store file %s", path)
	}

	return store, nil
}

// normalize repairs maps that unmarshal as nil from older files.
func (s *Store) normalize() {
	if s.state.Credentials == nil {
		s.state.Credentials = map[string]*entity.Credential{}
	}
	if s.state.ResetTokens == nil {
		s.state.ResetTokens = map[string]*entity.ResetToken{}
	}
	if s.state.TwoFactor == nil {
		s.state.TwoFactor = map[string]*entity.TwoFactorEnrollment{}
	}
}

// update applies fn to the state under lock and persists the result when fn
// succeeds. State changes made by a failing fn are still persisted on the
// next successful update, so fn must not mutate before deciding to fail.
func (s *Store) update(fn func(*fileState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.state); err != nil {
		return err
	}

	return s.save()
}

// view runs fn with read access to the state under lock. fn must copy
// anything it wants to return.
func (s *Store) view(fn func(*fileState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.state)
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal store state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write store temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace store file")
	}

	return nil
}

func cloneUser(user *entity.User) *entity.User {
	copied := *user

	return &copied
}

func cloneSession(session *entity.Session) *entity.Session {
	copied := *session

	return &copied
}

func cloneCredential(credential *entity.Credential) *entity.Credential {
	copied := *credential

	return &copied
}

func cloneResetToken(token *entity.ResetToken) *entity.ResetToken {
	copied := *token

	return &copied
}

func cloneEnrollment(enrollment *entity.TwoFactorEnrollment) *entity.TwoFactorEnrollment {
	copied := *enrollment
	copied.BackupCodes = append([]string(nil), enrollment.BackupCodes...)

	return &copied
}
