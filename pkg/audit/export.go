package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// csvHeader is the fixed column order of every export
var csvHeader = []string{"action", "item_id", "username", "changed_at", "diff"}

// WriteCSV streams entries as CSV in the order given
func WriteCSV(w io.Writer, entries []*Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			string(entry.Action),
			entry.ItemID.String(),
			entry.Actor,
			entry.ChangedAt.UTC().Format(time.RFC3339),
			FormatDiff(entry.Diff),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// FormatDiff renders a diff as "field: old -> new" pairs joined with "; ",
// fields sorted by name so output is deterministic. Empty and nil diffs
// render as an empty string.
func FormatDiff(diff map[string]FieldChange) string {
	if len(diff) == 0 {
		return ""
	}

	fields := make([]string, 0, len(diff))
	for name := range diff {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		change := diff[name]
		parts = append(parts, fmt.Sprintf("%s: %v -> %v", name, change.Old, change.New))
	}
	return strings.Join(parts, "; ")
}

// ExportFilename names an export after the day it was produced
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("audit_%s.csv", t.UTC().Format("2006-01-02"))
}
