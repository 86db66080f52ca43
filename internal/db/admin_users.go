package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Admin User Methods
// -----------------------------------------------------------------------------

// CreateAdminUser inserts an admin account with an already-hashed password
func (db *DB) CreateAdminUser(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO admin_users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		strings.ToLower(strings.TrimSpace(email)), passwordHash,
	).Scan(&id)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return uuid.Nil, fmt.Errorf("admin %q: %w", email, ErrDuplicate)
		}
		return uuid.Nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return id, nil
}

// firstAdminLockKey serializes CreateFirstAdminUser across connections.
const firstAdminLockKey int64 = 0x6f757472656163 // "outreac"

// CreateFirstAdminUser inserts an admin account only if none exists yet. The check and the
// insert run under a transaction-scoped advisory lock, so concurrent callers cannot both
// succeed. It returns ErrAdminExists when an admin is already present.
func (db *DB) CreateFirstAdminUser(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, firstAdminLockKey); err != nil {
		return uuid.Nil, fmt.Errorf("failed to lock admin registration: %w", err)
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO admin_users (email, password_hash)
		 SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM admin_users)
		 RETURNING id`,
		strings.ToLower(strings.TrimSpace(email)), passwordHash,
	).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return uuid.Nil, ErrAdminExists
		}
		if pgErrorCode(err) == pgUniqueViolation {
			return uuid.Nil, fmt.Errorf("admin %q: %w", email, ErrDuplicate)
		}
		return uuid.Nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit admin registration: %w", err)
	}
	return id, nil
}

// GetAdminUser retrieves an admin account by ID
func (db *DB) GetAdminUser(ctx context.Context, id uuid.UUID) (*AdminUser, error) {
	var u AdminUser
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM admin_users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &u, nil
}

// GetAdminUserByEmail retrieves an admin account by email (case-insensitive)
func (db *DB) GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var u AdminUser
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM admin_users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin user by email: %w", err)
	}
	return &u, nil
}

// CountAdminUsers returns the number of admin accounts
func (db *DB) CountAdminUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return n, nil
}

// UpdateAdminPassword replaces the password hash of an admin account
func (db *DB) UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE admin_users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin user %s: %w", id, ErrNotFound)
	}
	return nil
}
