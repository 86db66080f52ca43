// Package importer loads companies and their communication history from a JSON file.
package importer

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/schedule"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed companies.schema.json
var schemaJSON string

var schema = mustLoadSchema()

func mustLoadSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("importer: invalid embedded schema: %v", err))
	}
	return s
}

// Store is the persistence an import writes to. *db.DB implements it.
type Store interface {
	CreateCompany(ctx context.Context, c *db.Company) error
	AddCommunication(ctx context.Context, companyID uuid.UUID, c *db.Communication) error
}

// Record is one company in an import file.
type Record struct {
	Name                     string                `json:"name"`
	Location                 string                `json:"location"`
	LinkedInProfile          string                `json:"linkedin_profile"`
	Emails                   []string              `json:"emails"`
	PhoneNumbers             []string              `json:"phone_numbers"`
	Comments                 string                `json:"comments"`
	CommunicationPeriodicity string                `json:"communication_periodicity"`
	Communications           []CommunicationRecord `json:"communications"`
}

// CommunicationRecord is one communication in an import file.
type CommunicationRecord struct {
	Type  schedule.CommunicationType `json:"type"`
	Date  time.Time                  `json:"date"`
	Notes string                     `json:"notes"`
}

// Result summarizes an import.
type Result struct {
	Created        int
	Skipped        []string // names that already existed
	Communications int
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation in an import file.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("import file is invalid:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Parse reads and validates an import file without touching the store.
func Parse(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, verr
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode import file: %w", err)
	}

	// The schema pattern only requires leading digits; the day count must also be in range.
	var verr ValidationError
	for i, rec := range records {
		if rec.CommunicationPeriodicity != "" && !schedule.HasExplicitPeriodicity(rec.CommunicationPeriodicity) {
			verr.Errors = append(verr.Errors, FieldError{
				Field:   fmt.Sprintf("%d.communication_periodicity", i),
				Message: fmt.Sprintf("must start with a number of days between 1 and %d", schedule.MaxPeriodicityDays),
			})
		}
	}
	if len(verr.Errors) > 0 {
		return nil, &verr
	}
	return records, nil
}

// Import validates the whole file first, then creates each company and appends its
// communications in file order. Companies whose name already exists are skipped.
// A store failure stops the import; companies written before it are kept.
func Import(ctx context.Context, store Store, r io.Reader, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	records, err := Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, rec := range records {
		company := &db.Company{
			Name:                     rec.Name,
			Location:                 rec.Location,
			LinkedInProfile:          rec.LinkedInProfile,
			Emails:                   rec.Emails,
			PhoneNumbers:             rec.PhoneNumbers,
			Comments:                 rec.Comments,
			CommunicationPeriodicity: rec.CommunicationPeriodicity,
		}
		if err := store.CreateCompany(ctx, company); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				log.Info("company already exists, skipping", zap.String("name", rec.Name))
				res.Skipped = append(res.Skipped, rec.Name)
				continue
			}
			return res, fmt.Errorf("record %d (%s): %w", i, rec.Name, err)
		}
		res.Created++

		for j, cr := range rec.Communications {
			comm := &db.Communication{Type: cr.Type, Date: cr.Date, Notes: cr.Notes}
			if err := store.AddCommunication(ctx, company.ID, comm); err != nil {
				return res, fmt.Errorf("record %d (%s) communication %d: %w", i, rec.Name, j, err)
			}
			res.Communications++
		}
		log.Debug("imported company",
			zap.String("name", company.Name),
			zap.Int("communications", len(rec.Communications)))
	}
	return res, nil
}
