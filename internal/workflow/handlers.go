package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"sitebot/internal/domain"
)

// logRouted emits the routing-audit record every handler shares.
func logRouted(logger *slog.Logger, wf domain.Workflow, wc domain.WorkflowContext) {
	logger.Info("workflow routed",
		"category", wc.Classification.Category,
		"action", wf.Action,
		"from", wc.Message.From,
	)
}

// SafetyIncidentHandler escalates safety reports to the people who must act
// immediately and opens a critical ticket.
type SafetyIncidentHandler struct {
	notifier Notifier
	tickets  TicketCreator
	logger   *slog.Logger
}

func NewSafetyIncidentHandler(notifier Notifier, tickets TicketCreator, logger *slog.Logger) *SafetyIncidentHandler {
	return &SafetyIncidentHandler{notifier: notifier, tickets: tickets, logger: logger}
}

// Workflow returns the routing record this handler executes.
func (h *SafetyIncidentHandler) Workflow() domain.Workflow {
	return domain.Workflow{
		Action:       "notify_supervisor_urgent",
		Priority:     domain.PriorityCritical,
		Notify:       []string{"supervisor", "safety_officer"},
		CreateTicket: true,
	}
}

func (h *SafetyIncidentHandler) Handle(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	wf := h.Workflow()
	wc := domain.WorkflowContext{Message: msg, Classification: classification}

	logRouted(h.logger, wf, wc)
	h.logger.Info("notifying supervisor urgently", "from", msg.From, "priority", wf.Priority)

	for _, recipient := range wf.Notify {
		if err := h.notifier.Notify(ctx, recipient, wc); err != nil {
			return fmt.Errorf("notify %s: %w", recipient, err)
		}
	}
	if err := h.tickets.CreateTicket(ctx, wc, wf.Priority); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// MaterialRequestHandler forwards supply requests to procurement.
type MaterialRequestHandler struct {
	notifier Notifier
	tickets  TicketCreator
	logger   *slog.Logger
}

func NewMaterialRequestHandler(notifier Notifier, tickets TicketCreator, logger *slog.Logger) *MaterialRequestHandler {
	return &MaterialRequestHandler{notifier: notifier, tickets: tickets, logger: logger}
}

func (h *MaterialRequestHandler) Workflow() domain.Workflow {
	return domain.Workflow{
		Action:       "forward_to_procurement",
		Priority:     domain.PriorityNormal,
		Notify:       []string{"procurement_team"},
		CreateTicket: true,
	}
}

func (h *MaterialRequestHandler) Handle(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	wf := h.Workflow()
	wc := domain.WorkflowContext{Message: msg, Classification: classification}

	logRouted(h.logger, wf, wc)
	h.logger.Info("forwarding to procurement", "from", msg.From)

	for _, recipient := range wf.Notify {
		if err := h.notifier.Notify(ctx, recipient, wc); err != nil {
			return fmt.Errorf("notify %s: %w", recipient, err)
		}
	}
	if err := h.tickets.CreateTicket(ctx, wc, wf.Priority); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// QuestionHandler routes information requests to the AI agent.
type QuestionHandler struct {
	responder AgentResponder
	logger    *slog.Logger
}

func NewQuestionHandler(responder AgentResponder, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{responder: responder, logger: logger}
}

func (h *QuestionHandler) Workflow() domain.Workflow {
	return domain.Workflow{
		Action:      "route_to_ai_agent",
		Priority:    domain.PriorityNormal,
		UseRAG:      true,
		AutoRespond: true,
	}
}

func (h *QuestionHandler) Handle(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	wf := h.Workflow()
	wc := domain.WorkflowContext{Message: msg, Classification: classification}

	logRouted(h.logger, wf, wc)
	h.logger.Info("routing to AI agent with RAG", "from", msg.From)

	if err := h.responder.Respond(ctx, wc, wf.UseRAG); err != nil {
		return fmt.Errorf("agent respond: %w", err)
	}
	return nil
}

// SiteNoteHandler records progress updates on the site timeline.
type SiteNoteHandler struct {
	timeline TimelineWriter
	logger   *slog.Logger
}

func NewSiteNoteHandler(timeline TimelineWriter, logger *slog.Logger) *SiteNoteHandler {
	return &SiteNoteHandler{timeline: timeline, logger: logger}
}

func (h *SiteNoteHandler) Workflow() domain.Workflow {
	return domain.Workflow{
		Action:              "log_to_timeline",
		Priority:            domain.PriorityLow,
		CreateTimelineEntry: true,
	}
}

func (h *SiteNoteHandler) Handle(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	wf := h.Workflow()
	wc := domain.WorkflowContext{Message: msg, Classification: classification}

	logRouted(h.logger, wf, wc)
	h.logger.Info("logging to timeline", "from", msg.From)

	if err := h.timeline.AppendEntry(ctx, wc); err != nil {
		return fmt.Errorf("append timeline entry: %w", err)
	}
	return nil
}

// ManualReviewHandler is the fallback for uncategorizable messages; it only
// records that a human needs to look.
type ManualReviewHandler struct {
	logger *slog.Logger
}

func NewManualReviewHandler(logger *slog.Logger) *ManualReviewHandler {
	return &ManualReviewHandler{logger: logger}
}

func (h *ManualReviewHandler) Workflow() domain.Workflow {
	return domain.Workflow{
		Action:   "manual_review",
		Priority: domain.PriorityLow,
	}
}

func (h *ManualReviewHandler) Handle(_ context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	wf := h.Workflow()
	wc := domain.WorkflowContext{Message: msg, Classification: classification}

	logRouted(h.logger, wf, wc)
	h.logger.Info("manual review required", "from", msg.From, "category", classification.Category)
	return nil
}
