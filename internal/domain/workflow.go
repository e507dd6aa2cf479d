package domain

import "context"

// Priority ranks a routed workflow.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Workflow describes the downstream behavior one handler triggers: the named
// action, its priority, who gets notified, and which side effects apply.
type Workflow struct {
	Action              string
	Priority            Priority
	Notify              []string
	CreateTicket        bool
	UseRAG              bool
	AutoRespond         bool
	CreateTimelineEntry bool
}

// WorkflowHandler executes one category's workflow.
type WorkflowHandler interface {
	Handle(ctx context.Context, msg ParsedMessage, classification ClassificationResult) error
}
