package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

const companyColumns = `id, name, name_normalized, location, linkedin_profile, emails, phone_numbers,
	comments, communication_periodicity, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.NameNormalized, &c.Location, &c.LinkedInProfile,
		&c.Emails, &c.PhoneNumbers, &c.Comments, &c.CommunicationPeriodicity, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Communications = []Communication{}
	return &c, nil
}

// -----------------------------------------------------------------------------
// Company Methods
// -----------------------------------------------------------------------------

// CreateCompany inserts a company and fills in its generated fields.
// Communications on c are not written; use AddCommunication.
func (db *DB) CreateCompany(ctx context.Context, c *Company) error {
	c.Name = strings.TrimSpace(c.Name)
	c.NameNormalized = NormalizeName(c.Name)
	if c.NameNormalized == "" {
		return fmt.Errorf("company name %q has no letters or digits: %w", c.Name, ErrInvalid)
	}
	if strings.TrimSpace(c.CommunicationPeriodicity) == "" {
		c.CommunicationPeriodicity = schedule.DefaultPeriodicity
	}
	c.Emails = normalizeEmails(c.Emails)
	c.PhoneNumbers = cleanList(c.PhoneNumbers)

	err := db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, name_normalized, location, linkedin_profile, emails,
		                        phone_numbers, comments, communication_periodicity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.NameNormalized, c.Location, c.LinkedInProfile, c.Emails,
		c.PhoneNumbers, c.Comments, c.CommunicationPeriodicity,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}
	if c.Communications == nil {
		c.Communications = []Communication{}
	}
	return nil
}

// GetCompanyByID retrieves a company and its communications by UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	comms, err := db.ListCommunications(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Communications = comms
	return c, nil
}

// GetCompanyByNormalizedName retrieves a company by its normalized name
func (db *DB) GetCompanyByNormalizedName(ctx context.Context, normalized string) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name_normalized = $1`, normalized))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	comms, err := db.ListCommunications(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Communications = comms
	return c, nil
}

// ListCompanies returns companies ordered by name with their communications,
// plus the total number matching the filters.
func (db *DB) ListCompanies(ctx context.Context, filters CompanyFilters) ([]Company, int, error) {
	where := ""
	args := []any{}
	argNum := 1

	if filters.Search != "" {
		where = fmt.Sprintf(" WHERE name ILIKE $%d", argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + where + ` ORDER BY name, id`
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}

	if err := db.attachCommunications(ctx, companies); err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// ListAllCompanies returns every company with its communications.
func (db *DB) ListAllCompanies(ctx context.Context) ([]Company, error) {
	companies, _, err := db.ListCompanies(ctx, CompanyFilters{})
	return companies, err
}

// UpdateCompany applies a partial update and returns the updated company.
func (db *DB) UpdateCompany(ctx context.Context, id uuid.UUID, u CompanyUpdate) (*Company, error) {
	var name, normalized *string
	if u.Name != nil {
		trimmed := strings.TrimSpace(*u.Name)
		n := NormalizeName(trimmed)
		if n == "" {
			return nil, fmt.Errorf("company name %q has no letters or digits: %w", *u.Name, ErrInvalid)
		}
		name, normalized = &trimmed, &n
	}

	var emails, phones []string
	if u.Emails != nil {
		emails = normalizeEmails(u.Emails)
	}
	if u.PhoneNumbers != nil {
		phones = cleanList(u.PhoneNumbers)
	}

	periodicity := u.CommunicationPeriodicity
	if periodicity != nil && strings.TrimSpace(*periodicity) == "" {
		def := schedule.DefaultPeriodicity
		periodicity = &def
	}

	c, err := scanCompany(db.pool.QueryRow(ctx,
		`UPDATE companies SET
		     name = COALESCE($2, name),
		     name_normalized = COALESCE($3, name_normalized),
		     location = COALESCE($4, location),
		     linkedin_profile = COALESCE($5, linkedin_profile),
		     emails = COALESCE($6, emails),
		     phone_numbers = COALESCE($7, phone_numbers),
		     comments = COALESCE($8, comments),
		     communication_periodicity = COALESCE($9, communication_periodicity),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+companyColumns,
		id, name, normalized, u.Location, u.LinkedInProfile, emails, phones, u.Comments, periodicity,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("company %q: %w", *name, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	comms, err := db.ListCommunications(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Communications = comms
	return c, nil
}

// UpdatePeriodicity changes only the communication periodicity of a company.
func (db *DB) UpdatePeriodicity(ctx context.Context, id uuid.UUID, periodicity string) error {
	if strings.TrimSpace(periodicity) == "" {
		periodicity = schedule.DefaultPeriodicity
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE companies SET communication_periodicity = $1, updated_at = NOW() WHERE id = $2`,
		periodicity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update periodicity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteCompany deletes a company and all its communications (via cascade)
func (db *DB) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}
