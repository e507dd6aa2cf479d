package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"sitebot/internal/domain"
)

// RoutingError reports a category with no registered handler. The default
// table covers every category, so hitting this means a wiring bug, not bad
// user input.
type RoutingError struct {
	Category domain.MessageCategory
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no handler for category: %s", e.Category)
}

// Router dispatches classified messages to per-category workflow handlers.
type Router struct {
	handlers map[domain.MessageCategory]domain.WorkflowHandler
}

// RouterConfig wires the side-effect collaborators into the handler table.
// Nil collaborators fall back to the logging stubs.
type RouterConfig struct {
	Notifier  Notifier
	Tickets   TicketCreator
	Timeline  TimelineWriter
	Responder AgentResponder
	Logger    *slog.Logger
}

// NewRouter builds the handler table, exhaustive over the category
// enumeration: unknown and other both fall through to manual review, so
// every classification outcome resolves to a handler.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = &LogNotifier{Logger: cfg.Logger}
	}
	if cfg.Tickets == nil {
		cfg.Tickets = &LogTicketCreator{Logger: cfg.Logger}
	}
	if cfg.Timeline == nil {
		cfg.Timeline = &LogTimelineWriter{Logger: cfg.Logger}
	}
	if cfg.Responder == nil {
		cfg.Responder = &LogAgentResponder{Logger: cfg.Logger}
	}

	manual := NewManualReviewHandler(cfg.Logger)
	return &Router{
		handlers: map[domain.MessageCategory]domain.WorkflowHandler{
			domain.CategorySafetyIncident:  NewSafetyIncidentHandler(cfg.Notifier, cfg.Tickets, cfg.Logger),
			domain.CategoryMaterialRequest: NewMaterialRequestHandler(cfg.Notifier, cfg.Tickets, cfg.Logger),
			domain.CategoryQuestion:        NewQuestionHandler(cfg.Responder, cfg.Logger),
			domain.CategorySiteNote:        NewSiteNoteHandler(cfg.Timeline, cfg.Logger),
			domain.CategoryOther:           manual,
			domain.CategoryUnknown:         manual,
		},
	}
}

// Route looks up the handler for the classification's category and invokes it.
func (r *Router) Route(ctx context.Context, msg domain.ParsedMessage, classification domain.ClassificationResult) error {
	handler, ok := r.handlers[classification.Category]
	if !ok {
		return &RoutingError{Category: classification.Category}
	}
	return handler.Handle(ctx, msg, classification)
}
