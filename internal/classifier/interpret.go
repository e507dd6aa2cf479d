package classifier

import (
	"encoding/json"
	"regexp"

	"sitebot/internal/domain"
)

// Model output is untrusted free text that may wrap the JSON object in prose.
// jsonObjectPattern grabs the first brace-delimited run with no nested braces;
// the matched text can still be invalid JSON, so decoding keeps its own
// failure path.
var jsonObjectPattern = regexp.MustCompile(`\{[^}]+\}`)

// interpretation is the best-effort triple extracted from raw model output.
type interpretation struct {
	Category   string
	Confidence string
	Reason     string
}

// interpretResponse extracts a classification triple from raw model output.
// It never fails hard: output with no JSON object or with undecodable
// content maps to the unknown category at low confidence, and a decoded
// category outside the valid set is coerced to "other".
func interpretResponse(raw string) interpretation {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return interpretation{
			Category:   string(domain.CategoryUnknown),
			Confidence: string(domain.ConfidenceLow),
			Reason:     "Failed to parse LLM response",
		}
	}

	var fields struct {
		Category   *string `json:"category"`
		Confidence *string `json:"confidence"`
		Reason     *string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(match), &fields); err != nil {
		return interpretation{
			Category:   string(domain.CategoryUnknown),
			Confidence: string(domain.ConfidenceLow),
			Reason:     "JSON parsing failed",
		}
	}

	out := interpretation{
		Category:   string(domain.CategoryUnknown),
		Confidence: string(domain.ConfidenceMedium),
		Reason:     "No reason provided",
	}
	if fields.Category != nil {
		out.Category = *fields.Category
	}
	if fields.Confidence != nil {
		out.Confidence = *fields.Confidence
	}
	if fields.Reason != nil {
		out.Reason = *fields.Reason
	}

	if !isValidCategory(out.Category) {
		out.Category = string(domain.CategoryOther)
	}
	return out
}

func isValidCategory(s string) bool {
	for _, c := range domain.ValidCategories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
