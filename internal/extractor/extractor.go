// Package extractor pulls vehicle attributes out of free-text chat input
// using ordered keyword tables and a couple of numeric patterns.
package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"carvalue/internal/model"
)

const minPlausibleYear = 1990

var (
	yearPattern    = regexp.MustCompile(`\b(19[9][0-9]|20[0-2][0-9])\b`)
	mileagePattern = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})*|\d+)(?:\s*(?:km|miles|mi))?\b`)
)

// Extract returns the attributes recognised in a single utterance.
// Fields that could not be recognised are left empty. AdditionalInfo is
// never set here.
func Extract(utterance string, currentYear int) model.VehicleAttributes {
	var out model.VehicleAttributes
	lower := strings.ToLower(utterance)

	out.Make = extractMake(lower)

	out.Model = extractModel(lower)
	if out.Model != "" && out.Make == "" {
		if mk, ok := MakeForModel(out.Model); ok {
			out.Make = mk
		}
	}

	if m := yearPattern.FindStringSubmatch(utterance); m != nil {
		out.Year = m[1]
	}

	out.Mileage = extractMileage(utterance, currentYear)
	out.Condition = extractCondition(lower)

	return out
}

// extractMake returns the first vocabulary make contained in the text,
// in table order rather than text order
func extractMake(lower string) string {
	for _, mk := range makes {
		if strings.Contains(lower, mk) {
			return capitalize(mk)
		}
	}
	return ""
}

func extractModel(lower string) string {
	for _, p := range models {
		if strings.Contains(lower, p.key) {
			return p.value
		}
	}
	return ""
}

// extractMileage returns the first numeric token that does not look like a
// model year. Only 4-digit values inside [1990, currentYear+1] are skipped.
func extractMileage(utterance string, currentYear int) string {
	for _, m := range mileagePattern.FindAllStringSubmatch(utterance, -1) {
		digits := strings.ReplaceAll(m[1], ",", "")
		if looksLikeYear(digits, currentYear) {
			continue
		}
		return digits
	}
	return ""
}

func looksLikeYear(digits string, currentYear int) bool {
	if len(digits) != 4 {
		return false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	return n >= minPlausibleYear && n <= currentYear+1
}

// extractCondition runs the synonym pass, lets an explicit "<word> condition"
// mention override it, then falls back to the literal labels.
func extractCondition(lower string) model.Condition {
	var found model.Condition

synonymScan:
	for _, s := range synonyms {
		for _, kw := range s.keywords {
			if strings.Contains(lower, kw) {
				found = s.condition
				break synonymScan
			}
		}
	}

	if strings.Contains(lower, "condition") {
		if c := literalCondition(lower); c != "" {
			found = c
		}
	}

	if found == "" {
		found = literalCondition(lower)
	}
	return found
}

func literalCondition(lower string) model.Condition {
	for _, c := range model.Conditions {
		if strings.Contains(lower, string(c)) {
			return c
		}
	}
	return ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
