package db

import (
	"testing"
	"time"

	"github.com/jonathan/outreach-tracker/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Affirm", "affirm"},
		{"Affirm, Inc.", "affirminc"},
		{"Google LLC", "googlellc"},
		{"open AI", "openai"},
		{"100 Thieves", "100thieves"},
		{"  Spaces Around  ", "spacesaround"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestCleanList(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil becomes empty", input: nil, want: []string{}},
		{name: "trims and drops blanks", input: []string{" a ", "", "  ", "b"}, want: []string{"a", "b"}},
		{name: "dedupes keeping first", input: []string{"x", "y", "x"}, want: []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanList(tt.input))
		})
	}
}

func TestNormalizeEmails(t *testing.T) {
	got := normalizeEmails([]string{"Sales@Acme.com", "sales@acme.com ", "", "ceo@acme.com"})
	assert.Equal(t, []string{"sales@acme.com", "ceo@acme.com"}, got)
}

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"postgres://u:p@localhost:5432/outreach", "pgx5://u:p@localhost:5432/outreach"},
		{"postgresql://u@db/outreach?sslmode=disable", "pgx5://u@db/outreach?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MigrationURL(tt.input))
		})
	}
}

func TestCompanySchedule(t *testing.T) {
	company := &Company{
		Name:                     "Acme",
		CommunicationPeriodicity: "14 days",
		Communications: []Communication{
			{Seq: 1, Type: schedule.Email, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Seq: 2, Type: schedule.PhoneCall, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Notes: "intro call"},
		},
	}

	events := company.Events()
	require.Len(t, events, 2)
	assert.Equal(t, schedule.PhoneCall, events[1].Type)
	assert.Equal(t, "intro call", events[1].Notes)

	status, err := company.Schedule(time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, status.IsOverdue)
	require.NotNil(t, status.NextScheduled)
	assert.Equal(t, time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC), status.NextScheduled.Date)
}

func TestCompanySchedule_EmptyPeriodicityUsesDefault(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	company := &Company{Communications: []Communication{{Type: schedule.Other, Date: last}}}

	status, err := company.Schedule(last)
	require.NoError(t, err)
	require.NotNil(t, status.NextScheduled)
	assert.Equal(t, last.AddDate(0, 0, schedule.DefaultPeriodicityDays), status.NextScheduled.Date)
}
