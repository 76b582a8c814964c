package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type HeaderAnalysis struct {
	Headers        []string // raw headers, de-duplicated
	FirstRowIsData bool
	FirstDataRow   []string
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\.\d+$`),
}

// AnalyzeHeaders decides whether the first CSV row is a header. Header text is
// kept as is, apart from trimming, since matching against the dictionary
// normalizes it later. A row that looks like data gets generated column names.
func AnalyzeHeaders(firstRow []string) *HeaderAnalysis {
	if len(firstRow) == 0 {
		return nil
	}

	result := &HeaderAnalysis{
		Headers:      make([]string, len(firstRow)),
		FirstDataRow: firstRow,
	}

	headerLikeCount := 0
	for _, field := range firstRow {
		if isLikelyHeader(field) {
			headerLikeCount++
		}
	}

	if float64(headerLikeCount)/float64(len(firstRow)) >= 0.5 {
		for i, header := range firstRow {
			result.Headers[i] = cleanHeaderName(header, i)
		}
	} else {
		result.FirstRowIsData = true
		for i := range firstRow {
			result.Headers[i] = generateColumnName(i)
		}
	}

	result.Headers = ValidateHeaders(result.Headers)
	return result
}

func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return false
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(text) {
			return false
		}
	}

	letters, digits, specials := 0, 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r):
		default:
			specials++
		}
	}

	totalChars := letters + digits + specials
	if totalChars == 0 {
		return false
	}
	// ordinal decorated headers like "12-Age-3" still carry enough letters
	return letters > 0 && float64(letters)/float64(totalChars) >= 0.3
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders suffixes repeated headers so that no column shadows another
// inside a row.
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]bool)
	result := make([]string, len(headers))

	for i, header := range headers {
		candidate := header
		for counter := 1; seen[candidate]; counter++ {
			candidate = fmt.Sprintf("%s_%d", header, counter)
		}
		seen[candidate] = true
		result[i] = candidate
	}
	return result
}

func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(header)
	if header == "" || !isLikelyHeader(header) {
		return generateColumnName(index)
	}
	return header
}
