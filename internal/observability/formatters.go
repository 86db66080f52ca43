// Package observability provides formatted terminal output for the outreach CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/importer"
	"github.com/jonathan/outreach-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if utf8.RuneCountInString(line) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFollowUps lists companies needing a follow-up as of now.
func (p *Printer) PrintFollowUps(followUps []types.FollowUp, filter types.FollowUpFilter, now time.Time) {
	title := fmt.Sprintf("FOLLOW-UPS (%s) as of %s", filter, now.Format("2006-01-02 15:04"))
	if len(followUps) == 0 {
		p.printBox(title, "Nothing due.")
		return
	}

	var sb strings.Builder
	count := min(len(followUps), maxItemsToShow)
	for i := 0; i < count; i++ {
		f := followUps[i]
		state := "due today"
		if f.IsOverdue {
			state = "OVERDUE"
			if f.IsDueToday {
				state = "OVERDUE (today)"
			}
		}
		sb.WriteString(fmt.Sprintf("%-24s %s\n", f.CompanyName, state))
		if f.NextScheduled != nil {
			sb.WriteString(fmt.Sprintf("    %s on %s\n", f.NextScheduled.Type, f.NextScheduled.Date.In(now.Location()).Format("2006-01-02 15:04")))
		}
	}
	if len(followUps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(followUps)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImportResult summarizes a bulk import.
func (p *Printer) PrintImportResult(res *importer.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Companies created:      %d\n", res.Created))
	sb.WriteString(fmt.Sprintf("Communications added:   %d\n", res.Communications))
	sb.WriteString(fmt.Sprintf("Skipped (existing):     %d", len(res.Skipped)))
	count := min(len(res.Skipped), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("\n  • %s", res.Skipped[i]))
	}
	if len(res.Skipped) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(res.Skipped)-maxItemsToShow))
	}

	p.printBox("IMPORT", sb.String())
}

// PrintMigrateResult reports the schema version after a migration command.
func (p *Printer) PrintMigrateResult(action string, res *db.MigrateResult) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Version: %d\n", res.Version))
	if res.Dirty {
		sb.WriteString("State:   DIRTY (fix manually, then force a version)\n")
	}
	if action != "version" {
		if res.Changed {
			sb.WriteString("Result:  applied")
		} else {
			sb.WriteString("Result:  no change")
		}
	}

	p.printBox("MIGRATE "+strings.ToUpper(action), strings.TrimSuffix(sb.String(), "\n"))
}
