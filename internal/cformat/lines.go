// Package cformat holds the small line-level utilities the C source
// generator leans on: indentation, blank-line hygiene and identifier
// case conversion.
package cformat

import (
	"strings"
	"unicode"
)

// Indent prefixes every non-empty line with four spaces and strips
// leading, trailing and doubled blank lines.
func Indent(lines []string) []string {
	indented := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			line = "    " + line
		}
		indented = append(indented, line)
	}
	return StripBlankLines(indented)
}

// Dedent removes one level of four-space indentation from every line.
func Dedent(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) >= 4 && line[:4] == "    " {
			line = line[4:]
		}
		out = append(out, line)
	}
	return out
}

// StripBlankLines drops blank lines at both ends and collapses runs of
// blank lines in the middle to a single one.
func StripBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}

	stripped := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		if line == "" && len(stripped) > 0 && stripped[len(stripped)-1] == "" {
			continue
		}
		stripped = append(stripped, line)
	}
	return stripped
}

// JoinSuffix appends suffix to every line except the last. Used for
// comma-separated enum bodies.
func JoinSuffix(lines []string, suffix string) []string {
	if len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines[:len(lines)-1] {
		out[i] = line + suffix
	}
	out[len(lines)-1] = lines[len(lines)-1]
	return out
}

// SnakeCase converts CamelCase and dashed identifiers to snake_case,
// the shape used for generated C symbols. An uppercase rune starts a
// new word when it follows a lowercase letter or digit, or when it
// opens a lowercase run (so ZInner becomes z_inner while UTF8String
// stays utf8_string).
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 {
				prevBreak := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextBreak := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevBreak || nextBreak {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
