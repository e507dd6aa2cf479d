package whatsapp

import (
	"strings"

	"sitebot/internal/domain"
)

// PayloadError reports a malformed webhook payload. The ingress rejects these
// as client errors and the worker pool never retries them.
type PayloadError struct {
	Reason string
}

func (e *PayloadError) Error() string { return "invalid payload: " + e.Reason }

// Parser flattens the nested WhatsApp Business webhook payload into a
// domain.ParsedMessage. Pure function of its input: no network, no state.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse validates the entry → changes → value → messages chain in order, each
// check short-circuiting, then extracts and normalizes the first message.
func (p *Parser) Parse(payload map[string]any) (domain.ParsedMessage, error) {
	entry := firstObject(payload["entry"])
	if entry == nil {
		return domain.ParsedMessage{}, &PayloadError{Reason: "missing entry"}
	}

	change := firstObject(entry["changes"])
	if change == nil {
		return domain.ParsedMessage{}, &PayloadError{Reason: "missing changes"}
	}

	value, ok := change["value"].(map[string]any)
	if !ok || len(value) == 0 {
		return domain.ParsedMessage{}, &PayloadError{Reason: "missing value"}
	}

	message := firstObject(value["messages"])
	if message == nil {
		return domain.ParsedMessage{}, &PayloadError{Reason: "missing messages"}
	}

	from, _ := message["from"].(string)

	typeStr, _ := message["type"].(string)
	msgType, err := domain.ParseMessageType(typeStr)
	if err != nil {
		return domain.ParsedMessage{}, &PayloadError{Reason: err.Error()}
	}

	body := ""
	if msgType == domain.TypeText {
		if text, ok := message["text"].(map[string]any); ok {
			body, _ = text["body"].(string)
		}
		body = strings.TrimSpace(body)
		if body == "" {
			return domain.ParsedMessage{}, &PayloadError{Reason: "empty message body"}
		}
	}

	return domain.ParsedMessage{
		From: from,
		Type: msgType,
		Body: body,
	}, nil
}

// firstObject returns the first element of a decoded JSON array when it is a
// non-empty object, nil otherwise.
func firstObject(v any) map[string]any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	m, ok := list[0].(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return m
}
