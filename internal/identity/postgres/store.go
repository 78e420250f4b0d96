// Package postgres provides PostgreSQL implementation of the credential store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/identity"
	"github.com/jmoiron/sqlx"
)

// Store implements identity.CredentialStore using the credentials table.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new PostgreSQL credential store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type credentialRow struct {
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
}

// Get retrieves the credential for email.
func (s *Store) Get(ctx context.Context, email string) (*domain.Credential, error) {
	query := `
		SELECT email, password_hash, role
		FROM credentials
		WHERE email = $1
	`
	var row credentialRow
	if err := s.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get credential: %v", identity.ErrStorage, err)
	}

	return &domain.Credential{
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         domain.Role(row.Role),
	}, nil
}

// Create inserts cred. The primary key on email makes the check and the
// insert a single statement.
func (s *Store) Create(ctx context.Context, cred *domain.Credential) error {
	query := `
		INSERT INTO credentials (email, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, cred.Email, cred.PasswordHash, string(cred.Role))
	if err != nil {
		return fmt.Errorf("%w: create credential: %v", identity.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: create credential: %v", identity.ErrStorage, err)
	}
	if n == 0 {
		return identity.ErrEmailExists
	}
	return nil
}
