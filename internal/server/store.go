package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/db"
)

// CompanyStore is the company and communication persistence used by the handlers.
type CompanyStore interface {
	CreateCompany(ctx context.Context, c *db.Company) error
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error)
	ListCompanies(ctx context.Context, filters db.CompanyFilters) ([]db.Company, int, error)
	ListAllCompanies(ctx context.Context) ([]db.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, u db.CompanyUpdate) (*db.Company, error)
	UpdatePeriodicity(ctx context.Context, id uuid.UUID, periodicity string) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	AddCommunication(ctx context.Context, companyID uuid.UUID, c *db.Communication) error
	ListCommunications(ctx context.Context, companyID uuid.UUID) ([]db.Communication, error)
}

// AdminStore is the admin account persistence used by AdminService.
type AdminStore interface {
	CreateFirstAdminUser(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	GetAdminUser(ctx context.Context, id uuid.UUID) (*db.AdminUser, error)
	GetAdminUserByEmail(ctx context.Context, email string) (*db.AdminUser, error)
	CountAdminUsers(ctx context.Context) (int, error)
	UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// DBClient is everything the server needs from storage. *db.DB implements it.
type DBClient interface {
	CompanyStore
	AdminStore
	Ping(ctx context.Context) error
}

var _ DBClient = (*db.DB)(nil)
