package domain

import "fmt"

// MessageCategory is the closed set of classification outcomes.
type MessageCategory string

const (
	CategorySafetyIncident  MessageCategory = "safety_incident"
	CategoryMaterialRequest MessageCategory = "material_request"
	CategoryQuestion        MessageCategory = "question"
	CategorySiteNote        MessageCategory = "site_note"
	CategoryOther           MessageCategory = "other"

	// CategoryUnknown marks messages whose classification could not be
	// determined. It is never offered to the model as a target category.
	CategoryUnknown MessageCategory = "unknown"
)

// Categories lists every category, in prompt order.
func Categories() []MessageCategory {
	return []MessageCategory{
		CategorySafetyIncident,
		CategoryMaterialRequest,
		CategoryQuestion,
		CategorySiteNote,
		CategoryOther,
		CategoryUnknown,
	}
}

// ValidCategories lists the categories the model may legitimately return:
// everything except the unknown sentinel.
func ValidCategories() []MessageCategory {
	all := Categories()
	valid := make([]MessageCategory, 0, len(all)-1)
	for _, c := range all {
		if c != CategoryUnknown {
			valid = append(valid, c)
		}
	}
	return valid
}

// Description returns the one-line category description shown to the model so
// it can disambiguate categories it has never seen labeled.
func (c MessageCategory) Description() string {
	switch c {
	case CategorySafetyIncident:
		return "Reports accidents, hazards, safety violations, injuries, or unsafe conditions"
	case CategoryMaterialRequest:
		return "Requests for materials, tools, equipment, or supplies"
	case CategoryQuestion:
		return "Asks for information, clarification, or instructions"
	case CategorySiteNote:
		return "General updates, progress reports, observations, or notes"
	case CategoryOther:
		return "Anything that doesn't fit the above categories"
	case CategoryUnknown:
		return "Fallback for unclear or unclassifiable messages"
	}
	return ""
}

// ParseCategory maps a string onto the category enumeration.
func ParseCategory(s string) (MessageCategory, error) {
	switch c := MessageCategory(s); c {
	case CategorySafetyIncident, CategoryMaterialRequest, CategoryQuestion,
		CategorySiteNote, CategoryOther, CategoryUnknown:
		return c, nil
	}
	return "", fmt.Errorf("invalid message category: %q", s)
}

// Confidence is the advisory certainty level attached to a classification.
// It does not affect routing.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"

	// ConfidenceUnknown accompanies failed classifications.
	ConfidenceUnknown Confidence = "unknown"
)

// ParseConfidence maps a string onto the confidence enumeration.
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(s); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh, ConfidenceUnknown:
		return c, nil
	}
	return "", fmt.Errorf("invalid confidence: %q", s)
}

// ClassificationResult is the outcome of one classification call.
// When Success is false, Category and Confidence are both unknown and Error
// carries the failure reason.
type ClassificationResult struct {
	Success     bool
	Category    MessageCategory
	Confidence  Confidence
	RawResponse string
	ModelUsed   string
	Error       string
}

// WorkflowContext pairs a parsed message with its classification; it is the
// unit handed to routing and to the side-effect collaborators.
type WorkflowContext struct {
	Message        ParsedMessage
	Classification ClassificationResult
}
