package utils

import (
	"fmt"
	"strings"
)

// ExtractJSONObject locates the first balanced brace-delimited object in a
// model response and returns it, discarding fences and surrounding prose.
// Returns an error if no balanced object is present.
func ExtractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Strip markdown code fences if present
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}
	text = strings.TrimSpace(text)

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}
