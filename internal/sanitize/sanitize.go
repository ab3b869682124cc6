// Package sanitize normalises quotation marks and spacing in generated text.
//
// Model output is expected to use Chinese double quotes for emphasis. Models
// frequently fall back to ASCII single quotes, and quotes pressed directly
// against Latin text read poorly, so every string produced by a generation
// call passes through Text (or Value / JSON for structured payloads).
package sanitize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"
)

const (
	openQuote  = '“'
	closeQuote = '”'
	asciiQuote = '\''
)

// isSpacingExempt reports whether r needs no extra space next to a quote.
func isSpacingExempt(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '，', '。', '、', '：', '；', '？', '！':
		return true
	}
	return false
}

// Text rewrites a single string.
//
// Paired ASCII single quotes become “…” (left to right, pairs never nest, a
// trailing unmatched quote is left alone). A space is then inserted before
// every “ and after every ” unless the neighbour is whitespace, Chinese
// punctuation or the string boundary. Text is idempotent.
func Text(s string) string {
	if s == "" {
		return s
	}
	return spaceQuotes(pairQuotes([]rune(s)))
}

func pairQuotes(runes []rune) []rune {
	out := make([]rune, len(runes))
	copy(out, runes)

	for i := 0; i < len(out); i++ {
		if out[i] != asciiQuote {
			continue
		}
		j := i + 1
		for j < len(out) && out[j] != asciiQuote {
			j++
		}
		if j == len(out) {
			// unmatched
			break
		}
		out[i] = openQuote
		out[j] = closeQuote
		i = j
	}
	return out
}

func spaceQuotes(runes []rune) string {
	var buf bytes.Buffer
	buf.Grow(len(runes) * 3)

	var prev rune
	for i, r := range runes {
		if r == openQuote && i > 0 && !isSpacingExempt(prev) {
			buf.WriteRune(' ')
		}
		buf.WriteRune(r)
		prev = r

		if r == closeQuote && i+1 < len(runes) && !isSpacingExempt(runes[i+1]) {
			buf.WriteRune(' ')
			prev = ' '
		}
	}
	return buf.String()
}

// Value walks a decoded JSON value and sanitises every string in it.
// Maps and slices are copied; numbers, booleans and nil pass through.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return Text(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = Text(s)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Value(item)
		}
		return out
	default:
		return v
	}
}

// JSON sanitises every string value inside a JSON document. Object keys are
// left untouched and numbers keep their original textual form.
func JSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Value(doc)); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
