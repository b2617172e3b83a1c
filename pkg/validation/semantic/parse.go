package semantic

import (
	"encoding/json"
	"strings"
)

// verdict is the parsed shape of a reasoning service answer.
type verdict struct {
	Pass      bool
	Reasoning string
	Failures  []string
}

// parseStrategy attempts to extract a JSON object from free-form text.
// Strategies are tried in order; the first decoded object wins.
type parseStrategy func(text string) (map[string]any, bool)

var parseStrategies = []parseStrategy{
	parseWholeText,
	parseFencedBlock,
	parseBalancedObject,
}

// parseVerdict extracts a pass/fail verdict from the service's free-form
// answer. The second return value is false when no strategy produced an
// object with a boolean "pass" — the caller reports that as a parse failure,
// never as a panic or an error.
func parseVerdict(text string) (verdict, bool) {
	for _, strategy := range parseStrategies {
		decoded, ok := strategy(text)
		if !ok {
			continue
		}

		pass, ok := decoded["pass"].(bool)
		if !ok {
			return verdict{}, false
		}

		result := verdict{Pass: pass, Failures: []string{}}
		if reasoning, ok := decoded["reasoning"].(string); ok {
			result.Reasoning = reasoning
		}

		if failures, ok := decoded["failures"].([]any); ok {
			for _, failure := range failures {
				if message, ok := failure.(string); ok {
					result.Failures = append(result.Failures, message)
				}
			}
		}

		return result, true
	}

	return verdict{}, false
}

func parseWholeText(text string) (map[string]any, bool) {
	return decodeObject(strings.TrimSpace(text))
}

// parseFencedBlock strips a markdown code fence (``` or ```json) and parses
// the interior.
func parseFencedBlock(text string) (map[string]any, bool) {
	start := strings.Index(text, "```")
	if start == -1 {
		return nil, false
	}

	interior := text[start+3:]
	if newline := strings.IndexByte(interior, '\n'); newline != -1 && isFenceLanguage(interior[:newline]) {
		interior = interior[newline+1:]
	}

	end := strings.Index(interior, "```")
	if end == -1 {
		return nil, false
	}

	return decodeObject(strings.TrimSpace(interior[:end]))
}

func isFenceLanguage(label string) bool {
	label = strings.TrimSpace(label)

	return label == "" || strings.EqualFold(label, "json")
}

// parseBalancedObject scans for the first balanced {...} substring, tracking
// string literals and escapes so braces inside quoted text do not miscount.
func parseBalancedObject(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escaped {
			escaped = false

			continue
		}

		switch {
		case inString && char == '\\':
			escaped = true
		case char == '"':
			inString = !inString
		case !inString && char == '{':
			depth++
		case !inString && char == '}':
			depth--
			if depth == 0 {
				return decodeObject(text[start : i+1])
			}
		}
	}

	return nil, false
}

func decodeObject(candidate string) (map[string]any, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, false
	}

	object, ok := decoded.(map[string]any)

	return object, ok
}
