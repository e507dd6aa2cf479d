package domain

import "fmt"

// MessageType is the kind of inbound WhatsApp message.
type MessageType string

const (
	TypeText MessageType = "text"
)

// ParseMessageType maps a wire value onto the supported type set.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case TypeText:
		return TypeText, nil
	}
	return "", fmt.Errorf("unsupported message type: %q", s)
}

// ParsedMessage is the normalized form of one inbound webhook message.
// Body is trimmed and non-empty for text messages, empty for any other type.
// Created by the parser and passed by value downstream.
type ParsedMessage struct {
	From string
	Type MessageType
	Body string
}
