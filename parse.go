package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError wraps an unrecoverable failure to parse model output.
type ParseError struct {
	Err     error
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing classification response: %v (response: %s)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// rawClassification mirrors one element of the model's JSON array before
// coercion. Confidence and proposed_times keep their raw bytes because the
// model does not reliably honor the declared types.
type rawClassification struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Confidence    json.RawMessage `json:"confidence"`
	Company       string          `json:"company"`
	Position      string          `json:"position"`
	Contact       string          `json:"contact"`
	ProposedTimes json.RawMessage `json:"proposed_times"`
	Urgency       string          `json:"urgency"`
	Reason        string          `json:"reason"`
}

// parseClassificationResponse turns raw model output into coerced results.
// Recovery order: direct parse; slice from first '[' to last ']'; if the
// array is truncated mid-object, slice through the last complete '}' and
// close the array, recovering the complete leading elements. A top-level
// value that is valid JSON but not an array yields zero results, not an
// error: one malformed batch must not kill the run.
func parseClassificationResponse(responseText string) ([]ClassificationResult, error) {
	text := stripCodeFences(responseText)

	var raw []rawClassification
	directErr := json.Unmarshal([]byte(text), &raw)
	if directErr == nil {
		return coerceAll(raw), nil
	}

	if json.Valid([]byte(text)) && !strings.HasPrefix(strings.TrimSpace(text), "[") {
		return nil, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err == nil {
			return coerceAll(raw), nil
		}
	}
	if start >= 0 && end < start {
		// Truncated mid-object: keep every complete element, drop the partial
		// trailing one.
		brace := strings.LastIndex(text, "}")
		if brace > start {
			repaired := text[start:brace+1] + "]"
			if err := json.Unmarshal([]byte(repaired), &raw); err == nil {
				return coerceAll(raw), nil
			}
		}
	}

	snippet := text
	if len(snippet) > 512 {
		snippet = snippet[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(text))
	}
	return nil, &ParseError{Err: directErr, Snippet: snippet}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func coerceAll(raw []rawClassification) []ClassificationResult {
	results := make([]ClassificationResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, ClassificationResult{
			ID:            strings.TrimSpace(r.ID),
			Category:      coerceCategory(r.Category),
			Confidence:    coerceConfidence(r.Confidence),
			Company:       strings.TrimSpace(r.Company),
			Position:      strings.TrimSpace(r.Position),
			Contact:       strings.TrimSpace(r.Contact),
			ProposedTimes: coerceProposedTimes(r.ProposedTimes),
			Urgency:       coerceUrgency(r.Urgency),
			Reason:        strings.TrimSpace(r.Reason),
		})
	}
	return results
}

func coerceCategory(s string) string {
	switch strings.TrimSpace(s) {
	case CategoryInterviewInvite:
		return CategoryInterviewInvite
	case CategoryAutoReply:
		return CategoryAutoReply
	default:
		return CategoryOther
	}
}

func coerceUrgency(s string) string {
	if strings.TrimSpace(s) == UrgencyHigh {
		return UrgencyHigh
	}
	return UrgencyNormal
}

// coerceConfidence accepts a JSON number or a numeric string. Anything else,
// including non-finite values, becomes 0: below any threshold, so the result
// routes to manual review instead of acting on garbage.
func coerceConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	return 0
}

// coerceProposedTimes accepts a list of strings, a single string, null, or a
// mixed list. Always returns a list.
func coerceProposedTimes(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var asStringSlice []string
	if err := json.Unmarshal(raw, &asStringSlice); err == nil {
		var out []string
		for _, s := range asStringSlice {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			return nil
		}
		return []string{asString}
	}

	var asAnySlice []any
	if err := json.Unmarshal(raw, &asAnySlice); err == nil {
		var out []string
		for _, v := range asAnySlice {
			switch x := v.(type) {
			case string:
				x = strings.TrimSpace(x)
				if x != "" {
					out = append(out, x)
				}
			case float64:
				out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
			}
		}
		return out
	}

	return nil
}
