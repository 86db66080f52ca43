package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records writes in memory and rejects duplicate normalized names.
type memStore struct {
	companies map[uuid.UUID]*db.Company
	names     map[string]bool
	failComm  bool
}

func newMemStore() *memStore {
	return &memStore{companies: map[uuid.UUID]*db.Company{}, names: map[string]bool{}}
}

func (m *memStore) CreateCompany(_ context.Context, c *db.Company) error {
	n := db.NormalizeName(c.Name)
	if m.names[n] {
		return fmt.Errorf("company %q: %w", c.Name, db.ErrDuplicate)
	}
	m.names[n] = true
	c.ID = uuid.New()
	m.companies[c.ID] = c
	return nil
}

func (m *memStore) AddCommunication(_ context.Context, companyID uuid.UUID, c *db.Communication) error {
	if m.failComm {
		return errors.New("disk full")
	}
	company, ok := m.companies[companyID]
	if !ok {
		return db.ErrNotFound
	}
	c.CompanyID = companyID
	company.Communications = append(company.Communications, *c)
	return nil
}

func (m *memStore) byName(name string) *db.Company {
	for _, c := range m.companies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestImport(t *testing.T) {
	f, err := os.Open("testdata/companies.json")
	require.NoError(t, err)
	defer f.Close()

	store := newMemStore()
	res, err := Import(context.Background(), store, f, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, res.Communications)
	assert.Empty(t, res.Skipped)

	acme := store.byName("Acme, Inc.")
	require.NotNil(t, acme)
	require.Len(t, acme.Communications, 2)
	assert.Equal(t, schedule.LinkedInPost, acme.Communications[0].Type)
	assert.Equal(t, schedule.Email, acme.Communications[1].Type)
	assert.Equal(t, "sent CV", acme.Communications[1].Notes)
	assert.True(t, acme.Communications[1].Date.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))

	globex := store.byName("Globex")
	require.NotNil(t, globex)
	assert.Empty(t, globex.Communications)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.CreateCompany(context.Background(), &db.Company{Name: "Globex"}))

	input := `[{"name": "globex"}, {"name": "Initech"}]`
	res, err := Import(context.Background(), store, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []string{"globex"}, res.Skipped)
}

func TestImport_StoreErrorStops(t *testing.T) {
	store := newMemStore()
	store.failComm = true

	input := `[{"name": "Acme", "communications": [{"type": "Email", "date": "2024-01-01T00:00:00Z"}]}, {"name": "Globex"}]`
	res, err := Import(context.Background(), store, strings.NewReader(input), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, res.Created)
	assert.Nil(t, store.byName("Globex"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{name: "not an array", input: `{"name": "Acme"}`, wantField: "(root)"},
		{name: "missing name", input: `[{"location": "Berlin"}]`, wantField: "0"},
		{name: "unknown type", input: `[{"name": "Acme", "communications": [{"type": "Fax", "date": "2024-01-01T00:00:00Z"}]}]`, wantField: "0.communications.0.type"},
		{name: "bad date", input: `[{"name": "Acme", "communications": [{"type": "Email", "date": "yesterday"}]}]`, wantField: "0.communications.0.date"},
		{name: "bad email", input: `[{"name": "Acme", "emails": ["nope"]}]`, wantField: "0.emails.0"},
		{name: "unknown field", input: `[{"name": "Acme", "website": "acme.example"}]`, wantField: "0"},
		{name: "zero periodicity", input: `[{"name": "Acme", "communication_periodicity": "0 days"}]`, wantField: "0.communication_periodicity"},
		{name: "zero-padded zero periodicity", input: `[{"name": "Acme", "communication_periodicity": "00 days"}]`, wantField: "0.communication_periodicity"},
		{name: "periodicity too large", input: `[{"name": "Acme"}, {"name": "Beta", "communication_periodicity": "99999999 days"}]`, wantField: "1.communication_periodicity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField || strings.HasPrefix(fe.Field, tt.wantField+".") {
					found = true
				}
			}
			assert.True(t, found, "no error at %s in %v", tt.wantField, verr.Errors)
		})
	}
}

func TestImport_InvalidPeriodicityWritesNothing(t *testing.T) {
	store := newMemStore()
	input := `[{"name": "Acme", "communication_periodicity": "14 days"}, {"name": "Beta", "communication_periodicity": "0 days"}]`

	_, err := Import(context.Background(), store, strings.NewReader(input), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "1.communication_periodicity", verr.Errors[0].Field)
	assert.Empty(t, store.companies)
}

func TestParse_NotJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("not json"))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestImport_InvalidFileWritesNothing(t *testing.T) {
	store := newMemStore()
	input := `[{"name": "Acme"}, {"name": ""}]`
	_, err := Import(context.Background(), store, strings.NewReader(input), nil)
	require.Error(t, err)
	assert.Empty(t, store.companies)
}
