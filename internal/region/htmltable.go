package region

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var (
	rowRe          = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe         = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	tagRe          = regexp.MustCompile(`(?s)<[^>]+>`)
	hrefRe         = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)
	trailingDateRe = regexp.MustCompile(`[,;\s]*(\d{1,2}/\d{1,2}/\d{2,4})\s*$`)
)

// TableRows returns the inner HTML of every <tr> in the document.
func TableRows(doc string) []string {
	matches := rowRe.FindAllStringSubmatch(doc, -1)
	rows := make([]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, m[1])
	}
	return rows
}

// RowCells returns the raw inner HTML of every <td> in a row. Header rows built
// from <th> cells yield nothing.
func RowCells(row string) []string {
	matches := cellRe.FindAllStringSubmatch(row, -1)
	cells := make([]string, 0, len(matches))
	for _, m := range matches {
		cells = append(cells, m[1])
	}
	return cells
}

// CellText strips tags, decodes entities and collapses whitespace.
func CellText(cell string) string {
	text := tagRe.ReplaceAllString(cell, " ")
	text = html.UnescapeString(text)
	return collapseSpace(text)
}

// CellLink returns the first href in a cell resolved against base, or "".
func CellLink(cell, base string) string {
	m := hrefRe.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	href := html.UnescapeString(m[1])
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// SplitStatusDate separates a trailing date from a combined status cell:
// "Current, Active, 12/31/2025" yields ("Current, Active", "12/31/2025").
// Cells without a trailing date are returned whole with an empty date.
func SplitStatusDate(cell string) (status, date string) {
	cell = collapseSpace(cell)
	loc := trailingDateRe.FindStringSubmatchIndex(cell)
	if loc == nil {
		return cell, ""
	}
	date = cell[loc[2]:loc[3]]
	status = strings.TrimRight(strings.TrimSpace(cell[:loc[0]]), ",; ")
	return status, date
}
