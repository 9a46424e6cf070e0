package fetcher

import (
	"strings"
	"unicode"
)

// Record is one roster row keyed by normalized column header.
type Record map[string]string

// HeaderKey normalizes a column header so "First Name", "first_name" and
// "FIRSTNAME" all map to "firstname".
func HeaderKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Get returns the first non-empty value among the given header aliases.
func (r Record) Get(aliases ...string) string {
	for _, a := range aliases {
		if v := strings.TrimSpace(r[HeaderKey(a)]); v != "" {
			return v
		}
	}
	return ""
}

// toRecord zips a header row with a data row. Short rows leave the remaining
// columns empty; extra cells are dropped.
func toRecord(header []string, row []string) Record {
	rec := make(Record, len(header))
	for i, h := range header {
		key := HeaderKey(h)
		if key == "" {
			continue
		}
		if i < len(row) {
			rec[key] = strings.TrimSpace(row[i])
		} else {
			rec[key] = ""
		}
	}
	return rec
}

// isBlankRow reports whether every cell is empty.
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
