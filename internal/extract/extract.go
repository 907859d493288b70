// Package extract parses structured JSON out of raw text-generation output.
//
// Generation responses are untrusted: they may wrap JSON in markdown fences,
// carry trailing commas or comments, or arrive truncated mid-structure. This
// package is the single chokepoint between raw generation text and business
// logic. It always returns either a valid JSON document or a typed error,
// never panics on malformed input.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// maxSnippetLen caps the raw snippet carried on UnparsableError, keeping
// error messages and logs bounded.
const maxSnippetLen = 240

// UnparsableError reports generation output that could not be coerced to
// JSON even after the repair pipeline ran. It wraps ErrUnparsableResponse
// so callers can match with errors.Is.
type UnparsableError struct {
	// Label names the pipeline stage that produced the output
	// (e.g., "type_detection", "plan").
	Label string

	// Snippet is a bounded excerpt of the raw output for diagnosis.
	Snippet string

	// Position is the byte offset of the parse failure, -1 if unknown.
	Position int64

	// Reason describes why parsing failed.
	Reason string
}

// Error implements the error interface.
func (e *UnparsableError) Error() string {
	return fmt.Sprintf("%s: %v (stage %s, position %d): %q",
		e.Reason, devplanerrors.ErrUnparsableResponse, e.Label, e.Position, e.Snippet)
}

// Unwrap returns the sentinel so errors.Is(err, ErrUnparsableResponse) works.
func (e *UnparsableError) Unwrap() error {
	return devplanerrors.ErrUnparsableResponse
}

// newUnparsable builds an UnparsableError with a bounded snippet.
func newUnparsable(label, raw, reason string, position int64) *UnparsableError {
	snippet := raw
	if len(snippet) > maxSnippetLen {
		snippet = snippet[:maxSnippetLen]
	}
	return &UnparsableError{Label: label, Snippet: snippet, Position: position, Reason: reason}
}

// Extract locates and parses the outermost JSON object in raw generation
// output. Steps, in order of increasing aggressiveness: strip markdown
// fences, locate the outermost balanced {...} span, attempt a direct parse,
// apply repair heuristics (trailing commas, comments, truncation recovery),
// then retry the parse once. Failure after repair returns an
// *UnparsableError wrapping ErrUnparsableResponse.
func Extract(raw, label string) (json.RawMessage, error) {
	text := stripFences(raw)

	span, ok := jsonSpan(text)
	if !ok {
		return nil, newUnparsable(label, text, "no JSON object found", -1)
	}

	if msg, err := tryParse(span); err == nil {
		return msg, nil
	}

	repaired := repair(span)
	msg, err := tryParse(repaired)
	if err != nil {
		pos := int64(-1)
		var synErr *json.SyntaxError
		if errors.As(err, &synErr) {
			pos = synErr.Offset
		}
		return nil, newUnparsable(label, span, "parse failed after repair", pos)
	}
	return msg, nil
}

// ExtractInto extracts the JSON object from raw and decodes it into v.
// Decode failures (valid JSON of the wrong shape) are reported as
// unparsable as well: the document existed but could not serve the stage.
func ExtractInto(raw, label string, v any) error {
	msg, err := Extract(raw, label)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg, v); err != nil {
		return newUnparsable(label, string(msg), "decode failed: "+err.Error(), -1)
	}
	return nil
}

// tryParse validates that s is a complete JSON document.
func tryParse(s string) (json.RawMessage, error) {
	var probe any
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}

// stripFences removes markdown code fences (``` and ```json) around the
// payload, leaving inner content intact.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	start := strings.Index(trimmed, "```")
	rest := trimmed[start+3:]
	// Drop the language tag on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || isLanguageTag(firstLine) {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// isLanguageTag reports whether a fence header is a bare language name.
func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) <= 16
}

// jsonSpan locates the outermost balanced {...} span in text, tracking
// string literals and escapes so braces inside strings don't count.
// When the structure is truncated the span runs to the end of text and
// repair handles rebalancing.
func jsonSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	// Unbalanced: return the open span and let repair truncate it.
	return text[start:], true
}

// repair applies heuristics to a JSON-ish span: strip // and /* */
// comments outside strings, drop trailing commas before closing brackets,
// and cut a truncated structure back to its last balanced brace.
func repair(s string) string {
	s = stripComments(s)
	s = stripTrailingCommas(s)
	if balanced, ok := truncateToBalanced(s); ok {
		return balanced
	}
	return s
}

// stripComments removes // line comments and /* */ block comments that
// appear outside string literals.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++ // skip the closing '/'
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// stripTrailingCommas removes commas that directly precede a closing
// bracket or brace, ignoring whitespace, outside string literals.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// truncateToBalanced recovers a truncated document. It cuts back to the
// last position where a complete value closed, then re-closes every
// structure still open at that point. A document whose outermost brace
// closed is returned at that boundary unchanged. Returns false when no
// value ever completed, so nothing recoverable exists.
func truncateToBalanced(s string) (string, bool) {
	inString := false
	escaped := false
	var stack []byte // pending closers, innermost last
	cut := -1
	var cutStack []byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[:i+1], true
			}
			cut = i + 1
			cutStack = append(cutStack[:0], stack...)
		}
	}
	if cut < 0 {
		return "", false
	}

	out := strings.TrimRight(s[:cut], " \t\r\n,")
	var b strings.Builder
	b.Grow(len(out) + len(cutStack))
	b.WriteString(out)
	for i := len(cutStack) - 1; i >= 0; i-- {
		b.WriteByte(cutStack[i])
	}
	return b.String(), true
}
