package classifier

import "testing"

func TestInterpretResponse(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantCategory   string
		wantConfidence string
		wantReason     string
	}{
		{
			name:           "clean JSON",
			raw:            `{"category": "safety_incident", "confidence": "high", "reason": "mentions injury"}`,
			wantCategory:   "safety_incident",
			wantConfidence: "high",
			wantReason:     "mentions injury",
		},
		{
			name:           "JSON wrapped in prose",
			raw:            "Sure! Here is the classification:\n{\"category\": \"material_request\", \"confidence\": \"medium\", \"reason\": \"asks for supplies\"}\nLet me know if you need anything else.",
			wantCategory:   "material_request",
			wantConfidence: "medium",
			wantReason:     "asks for supplies",
		},
		{
			name:           "invalid category coerced to other",
			raw:            `{"category": "weather_report", "confidence": "high", "reason": "talks about rain"}`,
			wantCategory:   "other",
			wantConfidence: "high",
			wantReason:     "talks about rain",
		},
		{
			name:           "missing category coerced to other",
			raw:            `{"confidence": "high", "reason": "unsure"}`,
			wantCategory:   "other",
			wantConfidence: "high",
			wantReason:     "unsure",
		},
		{
			name:           "missing confidence defaults to medium",
			raw:            `{"category": "question", "reason": "asks something"}`,
			wantCategory:   "question",
			wantConfidence: "medium",
			wantReason:     "asks something",
		},
		{
			name:           "missing reason gets placeholder",
			raw:            `{"category": "site_note", "confidence": "low"}`,
			wantCategory:   "site_note",
			wantConfidence: "low",
			wantReason:     "No reason provided",
		},
		{
			name:           "no JSON object at all",
			raw:            "I think this message is about safety.",
			wantCategory:   "unknown",
			wantConfidence: "low",
			wantReason:     "Failed to parse LLM response",
		},
		{
			name:           "empty response",
			raw:            "",
			wantCategory:   "unknown",
			wantConfidence: "low",
			wantReason:     "Failed to parse LLM response",
		},
		{
			name:           "braces but not JSON",
			raw:            "{this is not json}",
			wantCategory:   "unknown",
			wantConfidence: "low",
			wantReason:     "JSON parsing failed",
		},
		{
			name:           "unknown is not a valid model category",
			raw:            `{"category": "unknown", "confidence": "low", "reason": "cannot tell"}`,
			wantCategory:   "other",
			wantConfidence: "low",
			wantReason:     "cannot tell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interpretResponse(tt.raw)
			if got.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %q, want %q", got.Confidence, tt.wantConfidence)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestInterpretResponse_FirstObjectWins(t *testing.T) {
	raw := `{"category": "question", "confidence": "high"} {"category": "other", "confidence": "low"}`
	got := interpretResponse(raw)
	if got.Category != "question" {
		t.Errorf("category = %q, want first object's %q", got.Category, "question")
	}
}
