package summary

import "sort"

// Vocabulary is the permitted code set of an enumerated variable.
// It is read-only after construction and shared by every accumulator of the variable.
type Vocabulary struct {
	codes map[string]string
}

// NewVocabulary copies codes (code -> display label).
func NewVocabulary(codes map[string]string) *Vocabulary {
	v := &Vocabulary{codes: make(map[string]string, len(codes))}
	for code, label := range codes {
		v.codes[code] = label
	}
	return v
}

func (v *Vocabulary) Has(code string) bool {
	_, ok := v.codes[code]
	return ok
}

func (v *Vocabulary) Label(code string) (string, bool) {
	label, ok := v.codes[code]
	return label, ok
}

func (v *Vocabulary) Len() int {
	return len(v.codes)
}

// Codes returns the declared codes in sorted order.
func (v *Vocabulary) Codes() []string {
	codes := make([]string, 0, len(v.codes))
	for code := range v.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// sameCodes compares code sets; labels do not take part. Two nil vocabularies match.
func (v *Vocabulary) sameCodes(other *Vocabulary) bool {
	if v == nil || other == nil {
		return v == other
	}
	if len(v.codes) != len(other.codes) {
		return false
	}
	for code := range v.codes {
		if !other.Has(code) {
			return false
		}
	}
	return true
}
