// Package filestore keeps credential records in a single JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/identity"
)

// record is the on-disk shape of one credential.
type record struct {
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Store is a credential store backed by a JSON object keyed by email.
// Keys are case-folded, so lookups expect domain.NormalizeEmail output.
// Every write rewrites the whole file. Writers are serialized by mu.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store for path, creating an empty file and its parent
// directories if they do not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create credential directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(map[string]record{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", identity.ErrStorage, path, err)
	}

	return s, nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Get returns the credential stored for email.
func (s *Store) Get(_ context.Context, email string) (*domain.Credential, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}

	rec, ok := records[email]
	if !ok {
		return nil, identity.ErrUserNotFound
	}

	return &domain.Credential{Email: email, PasswordHash: rec.Password, Role: rec.Role}, nil
}

// Create adds cred unless its email is already present.
func (s *Store) Create(_ context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := records[cred.Email]; ok {
		return identity.ErrEmailExists
	}

	records[cred.Email] = record{Password: cred.PasswordHash, Role: cred.Role}
	return s.write(records)
}

// Load returns every stored credential keyed by email.
func (s *Store) Load(_ context.Context) (map[string]domain.Credential, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}

	creds := make(map[string]domain.Credential, len(records))
	for email, rec := range records {
		creds[email] = domain.Credential{Email: email, PasswordHash: rec.Password, Role: rec.Role}
	}
	return creds, nil
}

// Save replaces the file contents with creds.
func (s *Store) Save(_ context.Context, creds map[string]domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[string]record, len(creds))
	for email, c := range creds {
		records[email] = record{Password: c.PasswordHash, Role: c.Role}
	}
	return s.write(records)
}

func (s *Store) read() (map[string]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", identity.ErrStorage, s.path, err)
	}

	raw := map[string]record{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", identity.ErrStorage, s.path, err)
	}

	// Hand-edited files may hold unfolded emails. Keys are folded on read;
	// an already folded key wins over its variants.
	records := make(map[string]record, len(raw))
	for email, rec := range raw {
		key := domain.NormalizeEmail(email)
		if _, taken := records[key]; taken && email != key {
			continue
		}
		records[key] = rec
	}
	return records, nil
}

// write replaces the file atomically: readers see either the old or the new contents.
func (s *Store) write(records map[string]record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", identity.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", identity.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", identity.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp file: %v", identity.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", identity.ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("%w: chmod temp file: %v", identity.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", identity.ErrStorage, s.path, err)
	}
	return nil
}
