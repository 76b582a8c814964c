package summary

import (
	"sort"
	"strings"
)

// MissingEncoding is the set of literal cell values treated as absent data for one run.
// Nothing is missing by default except cells that are empty after trimming.
type MissingEncoding map[string]struct{}

func NewMissingEncoding(values ...string) MissingEncoding {
	m := MissingEncoding{}
	for _, v := range values {
		m[strings.TrimSpace(v)] = struct{}{}
	}
	return m
}

// ParseMissingEncoding reads a comma separated list such as "NA,-999,unknown".
func ParseMissingEncoding(list string) MissingEncoding {
	m := MissingEncoding{}
	if strings.TrimSpace(list) == "" {
		return m
	}
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}

// Contains reports whether an already trimmed value is a missing encoding.
func (m MissingEncoding) Contains(value string) bool {
	if value == "" {
		return true
	}
	_, ok := m[value]
	return ok
}

func (m MissingEncoding) Values() []string {
	values := make([]string, 0, len(m))
	for v := range m {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func (m MissingEncoding) equal(other MissingEncoding) bool {
	if len(m) != len(other) {
		return false
	}
	for v := range m {
		if _, ok := other[v]; !ok {
			return false
		}
	}
	return true
}
