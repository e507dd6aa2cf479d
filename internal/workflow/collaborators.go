package workflow

import (
	"context"
	"log/slog"

	"sitebot/internal/domain"
)

// Side-effect collaborators injected into the handlers. The core only
// records intent; real ticketing, notification, timeline, and agent
// backends plug in here.

// Notifier delivers an alert about a routed message to a named recipient
// role (supervisor, safety_officer, procurement_team).
type Notifier interface {
	Notify(ctx context.Context, recipient string, wc domain.WorkflowContext) error
}

// TicketCreator opens a tracking ticket for a routed message.
type TicketCreator interface {
	CreateTicket(ctx context.Context, wc domain.WorkflowContext, priority domain.Priority) error
}

// TimelineWriter appends a routed message to the site timeline.
type TimelineWriter interface {
	AppendEntry(ctx context.Context, wc domain.WorkflowContext) error
}

// AgentResponder answers a question through the AI agent, optionally
// grounded by the knowledge base.
type AgentResponder interface {
	Respond(ctx context.Context, wc domain.WorkflowContext, useRAG bool) error
}

// LogNotifier records notification intent without delivering anything.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, recipient string, wc domain.WorkflowContext) error {
	n.Logger.Info("notification queued",
		"recipient", recipient,
		"category", wc.Classification.Category,
		"from", wc.Message.From,
	)
	return nil
}

// LogTicketCreator records ticket intent without opening anything.
type LogTicketCreator struct {
	Logger *slog.Logger
}

func (t *LogTicketCreator) CreateTicket(_ context.Context, wc domain.WorkflowContext, priority domain.Priority) error {
	t.Logger.Info("ticket queued",
		"category", wc.Classification.Category,
		"priority", priority,
		"from", wc.Message.From,
	)
	return nil
}

// LogTimelineWriter records timeline intent without persisting anything.
type LogTimelineWriter struct {
	Logger *slog.Logger
}

func (w *LogTimelineWriter) AppendEntry(_ context.Context, wc domain.WorkflowContext) error {
	w.Logger.Info("timeline entry queued",
		"from", wc.Message.From,
		"body_len", len(wc.Message.Body),
	)
	return nil
}

// LogAgentResponder records agent-routing intent without querying anything.
type LogAgentResponder struct {
	Logger *slog.Logger
}

func (r *LogAgentResponder) Respond(_ context.Context, wc domain.WorkflowContext, useRAG bool) error {
	r.Logger.Info("agent response queued",
		"from", wc.Message.From,
		"use_rag", useRAG,
	)
	return nil
}
