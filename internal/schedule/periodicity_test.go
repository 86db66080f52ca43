package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodicityDays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "days", input: "30 days", want: 30},
		{name: "unit word ignored", input: "2 weeks", want: 2},
		{name: "bare number", input: "7", want: 7},
		{name: "empty", input: "", want: DefaultPeriodicityDays},
		{name: "whitespace only", input: "   ", want: DefaultPeriodicityDays},
		{name: "no number", input: "abc", want: DefaultPeriodicityDays},
		{name: "unit first", input: "weeks 2", want: DefaultPeriodicityDays},
		{name: "zero", input: "0 days", want: DefaultPeriodicityDays},
		{name: "negative", input: "-3 days", want: DefaultPeriodicityDays},
		{name: "digits glued to unit", input: "30days", want: 30},
		{name: "decimal truncated", input: "2.5 weeks", want: 2},
		{name: "leading spaces", input: "  10 days", want: 10},
		{name: "explicit plus", input: "+5 days", want: 5},
		{name: "default string", input: DefaultPeriodicity, want: DefaultPeriodicityDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePeriodicityDays(tt.input))
		})
	}
}

func TestHasExplicitPeriodicity(t *testing.T) {
	assert.True(t, HasExplicitPeriodicity("30 days"))
	assert.True(t, HasExplicitPeriodicity("2 weeks"))
	assert.False(t, HasExplicitPeriodicity(""))
	assert.False(t, HasExplicitPeriodicity("soon"))
	assert.False(t, HasExplicitPeriodicity("0 days"))
	assert.False(t, HasExplicitPeriodicity("99999999 days"))
}
