package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFence     = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	anyFence      = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.+?)\\s*```")
	wholeFence    = regexp.MustCompile("(?s)^```(?:markdown|md)?[ \\t]*\\n(.*?)\\n?```$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	bareKey       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes a JSON object from model output. Models wrap their
// answer in code fences, add chatter around it, or emit trailing commas and
// bare keys; each of those is tried in turn.
func ParseAIJSON(input string, target any) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []string{input}
	if fenced := fromCodeFence(input); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if obj := firstObject(input); obj != "" {
		candidates = append(candidates, obj, repairJSON(obj))
	}
	candidates = append(candidates, repairJSON(input))

	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), target); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse JSON from input: %s", Truncate(input, 100))
}

// StripCodeFence removes a markdown fence wrapped around an entire answer,
// leaving the markdown inside intact
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := wholeFence.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// Truncate shortens s to maxLen bytes, marking the cut
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func fromCodeFence(input string) string {
	if m := jsonFence.FindStringSubmatch(input); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFence.FindStringSubmatch(input); m != nil {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}
	return ""
}

// firstObject returns the first brace-balanced {...} span, ignoring braces
// inside string literals
func firstObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

func repairJSON(input string) string {
	s := strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareKey.ReplaceAllString(s, `$1"$2"$3`)
	s = singleToDoubleQuotes(s)
	return controlChars.ReplaceAllString(s, "")
}

// singleToDoubleQuotes swaps single quotes that open or close a value.
// Apostrophes inside words are left alone.
func singleToDoubleQuotes(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	inDouble, escaped := false, false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if i == 0 || strings.ContainsRune(":,[{ ", rune(input[i-1])) || (i+1 < len(input) && strings.ContainsRune(":,]} ", rune(input[i+1]))) {
				b.WriteByte('"')
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
