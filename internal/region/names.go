package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName joins name parts with single spaces. Parts shouted in all caps
// by the upstream are title-cased; mixed-case parts are kept as-is.
func DisplayName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = collapseSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, titleIfUpper(p))
	}
	return strings.Join(kept, " ")
}

// LastFirst converts "SMITH, JOHN A" into "John A Smith". Names without a comma
// are returned through DisplayName unchanged in order.
func LastFirst(name string) string {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return DisplayName(name)
	}
	return DisplayName(first, last)
}

// SplitName derives first and last name from a display name, accepting both
// "First Middle Last" and "Last, First Middle".
func SplitName(name string) (first, last string) {
	if l, f, ok := strings.Cut(name, ","); ok {
		fields := strings.Fields(f)
		if len(fields) > 0 {
			first = fields[0]
		}
		return first, strings.TrimSpace(l)
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return fields[0], fields[len(fields)-1]
	}
}

func titleIfUpper(s string) string {
	for _, r := range s {
		if unicode.IsLower(r) {
			return s
		}
	}
	return cases.Title(language.AmericanEnglish).String(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
