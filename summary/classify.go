package summary

import (
	"math"
	"strconv"
	"strings"
)

type Outcome int

const (
	Missing Outcome = iota
	Invalid
	Valid
)

func (o Outcome) String() string {
	switch o {
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	}
	return "unknown"
}

// Classification is the three-way verdict on one raw numeric cell.
type Classification struct {
	Outcome Outcome
	Text    string  // trimmed cell
	Value   float64 // set only when Outcome is Valid
}

// Classify decides whether raw is missing, unparsable, or a usable number.
// NaN and infinities parse but are Invalid since they cannot enter a sum.
func Classify(raw string, missing MissingEncoding) Classification {
	text := strings.TrimSpace(raw)
	if missing.Contains(text) {
		return Classification{Outcome: Missing, Text: text}
	}
	return classifyNumber(text)
}

func classifyNumber(text string) Classification {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Classification{Outcome: Invalid, Text: text}
	}
	return Classification{Outcome: Valid, Text: text, Value: v}
}
