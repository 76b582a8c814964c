package dictionary

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// Workspace exports decorate headers with ordinal markers, e.g. "12-Age-3".
	leadingOrdinal  = regexp.MustCompile(`^\d+-`)
	trailingOrdinal = regexp.MustCompile(`-\d+$`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeHeader maps a raw column header, or a declared variable name, to the
// key used for matching: transliterated, lower case, ordinal markers stripped and
// every run of other symbols collapsed to a single underscore.
func NormalizeHeader(raw string) string {
	s := strings.TrimSpace(unidecode.Unidecode(raw))
	s = strings.ToLower(s)
	s = leadingOrdinal.ReplaceAllString(s, "")
	s = trailingOrdinal.ReplaceAllString(s, "")
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
