package classifier

import (
	"fmt"
	"strings"

	"sitebot/internal/domain"
)

const promptTemplate = `You are a construction site message classifier. Analyze the following message from a construction worker and classify it into ONE of these categories:

CATEGORIES:
%s
MESSAGE: "%s"

Respond STRICTLY in this JSON format:
{
    "category": "one_of_the_categories_above",
    "confidence": "high/medium/low",
    "reason": "brief_explanation"
}

Only output the JSON, nothing else.`

// buildPrompt renders the classification instruction for one message body.
// Every category gets a one-line description so the model can disambiguate
// labels it has never seen; the body is interpolated verbatim.
func buildPrompt(body string) string {
	var categories strings.Builder
	for i, cat := range domain.Categories() {
		fmt.Fprintf(&categories, "%d. %s - %s\n", i+1, cat, cat.Description())
	}
	return fmt.Sprintf(promptTemplate, categories.String(), body)
}
