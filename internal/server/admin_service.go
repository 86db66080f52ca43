package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/config"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/types"
)

// AdminService provides the business logic behind the /auth endpoints.
type AdminService struct {
	store          AdminStore
	passwordConfig *config.PasswordConfig
}

// NewAdminService creates a new AdminService with the given dependencies
func NewAdminService(store AdminStore, passwordConfig *config.PasswordConfig) *AdminService {
	return &AdminService{store: store, passwordConfig: passwordConfig}
}

func toAdminView(u *db.AdminUser) *types.Admin {
	if u == nil {
		return nil
	}
	return &types.Admin{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register creates an admin account. Only the first account can be self-registered;
// further admins are seeded with the hash-password command.
func (s *AdminService) Register(ctx context.Context, req *types.RegisterRequest) (*types.Admin, error) {
	n, err := s.store.CountAdminUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if n > 0 {
		return nil, &ErrRegistrationClosed{}
	}

	if err := s.passwordConfig.CheckStrength(req.Password); err != nil {
		return nil, &ErrValidation{Field: "password", Message: err.Error()}
	}

	hash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The count above is only an early exit; the store decides atomically.
	email := strings.ToLower(strings.TrimSpace(req.Email))
	id, err := s.store.CreateFirstAdminUser(ctx, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrAdminExists) {
			return nil, &ErrRegistrationClosed{}
		}
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	admin, err := s.store.GetAdminUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created admin: %w", err)
	}
	if admin == nil {
		return nil, fmt.Errorf("created admin not found: %s", id)
	}
	return toAdminView(admin), nil
}

// Login checks credentials and returns the admin.
// Unknown email and wrong password produce the same error.
func (s *AdminService) Login(ctx context.Context, req *types.LoginRequest) (*types.Admin, error) {
	admin, err := s.store.GetAdminUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	if admin == nil || !s.passwordConfig.VerifyPassword(req.Password, admin.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return toAdminView(admin), nil
}

// UpdatePassword replaces an admin's password after checking the current one.
func (s *AdminService) UpdatePassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error {
	admin, err := s.store.GetAdminUser(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return &ErrAdminNotFound{AdminID: adminID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, admin.PasswordHash) {
		return &ErrPasswordMismatch{}
	}
	if err := s.passwordConfig.CheckStrength(newPassword); err != nil {
		return &ErrValidation{Field: "new_password", Message: err.Error()}
	}

	hash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.store.UpdateAdminPassword(ctx, adminID, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrAdminNotFound{AdminID: adminID}
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
