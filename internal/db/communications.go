package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/schedule"
)

const communicationColumns = `id, company_id, seq, type, date, notes, created_at`

func scanCommunication(row rowScanner) (Communication, error) {
	var c Communication
	var commType string
	err := row.Scan(&c.ID, &c.CompanyID, &c.Seq, &commType, &c.Date, &c.Notes, &c.CreatedAt)
	c.Type = schedule.CommunicationType(commType)
	return c, err
}

// -----------------------------------------------------------------------------
// Communication Methods
// -----------------------------------------------------------------------------

// AddCommunication appends a communication to a company's history.
// Returns ErrNotFound if the company does not exist.
func (db *DB) AddCommunication(ctx context.Context, companyID uuid.UUID, c *Communication) error {
	if !c.Type.Valid() {
		return fmt.Errorf("communication type %q: %w", c.Type, ErrInvalid)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("communication date is required: %w", ErrInvalid)
	}

	c.CompanyID = companyID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO communications (company_id, type, date, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, seq, created_at`,
		companyID, string(c.Type), c.Date, c.Notes,
	).Scan(&c.ID, &c.Seq, &c.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("company %s: %w", companyID, ErrNotFound)
		}
		return fmt.Errorf("failed to add communication: %w", err)
	}

	_, err = db.pool.Exec(ctx, `UPDATE companies SET updated_at = NOW() WHERE id = $1`, companyID)
	if err != nil {
		return fmt.Errorf("failed to touch company: %w", err)
	}
	return nil
}

// ListCommunications returns a company's communications in insertion order.
func (db *DB) ListCommunications(ctx context.Context, companyID uuid.UUID) ([]Communication, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+communicationColumns+`
		 FROM communications WHERE company_id = $1 ORDER BY seq`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	defer rows.Close()

	comms := []Communication{}
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan communication: %w", err)
		}
		comms = append(comms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	return comms, nil
}

// attachCommunications loads communications for all companies in one query.
func (db *DB) attachCommunications(ctx context.Context, companies []Company) error {
	if len(companies) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(companies))
	index := make(map[uuid.UUID]int, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
		index[c.ID] = i
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+communicationColumns+`
		 FROM communications WHERE company_id = ANY($1) ORDER BY company_id, seq`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to list communications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return fmt.Errorf("failed to scan communication: %w", err)
		}
		i := index[c.CompanyID]
		companies[i].Communications = append(companies[i].Communications, c)
	}
	return rows.Err()
}
