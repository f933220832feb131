// Package extract recovers JSON objects from free-form model responses.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoObject is returned when the text contains no opening brace at all.
var ErrNoObject = errors.New("no JSON object found in model response")

// Matches opening fences with an optional language tag and bare closing ones.
var fenceRE = regexp.MustCompile("```[a-zA-Z]*")

// StripFences removes markdown code-fence markers anywhere in the text,
// leaving the inner content intact.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(text, ""))
}

// FirstObject recovers the shortest balanced JSON object starting at the
// first brace. Chat backends are not guaranteed to return only JSON, so the
// scan tolerates prose before the object, trailing content after it, and
// fences around it. Best-effort: braces inside string literals are counted
// like any other character, and the first balanced block wins even when a
// stray example object precedes the intended one.
func FirstObject(text string) (map[string]any, error) {
	clean := StripFences(text)
	start := strings.IndexByte(clean, '{')
	if start < 0 {
		return nil, ErrNoObject
	}

	depth := 0
	end := len(clean)
	for i := start; i < len(clean); i++ {
		switch clean[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			end = i + 1
			break
		}
	}
	// Unbalanced braces run the scan to end-of-string; the parse below
	// reports that as an ordinary parse failure.

	var obj map[string]any
	if err := json.Unmarshal([]byte(clean[start:end]), &obj); err != nil {
		return nil, fmt.Errorf("unable to parse JSON object: %w", err)
	}
	return obj, nil
}
