package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sitebot/internal/classifier"
	"sitebot/internal/domain"
	"sitebot/internal/metrics"
	"sitebot/internal/whatsapp"
	"sitebot/internal/workflow"
)

// Processor runs the parse → classify → store → route pipeline for one
// webhook payload. Stateless: safe for concurrent use by multiple workers.
type Processor struct {
	parser     *whatsapp.Parser
	classifier *classifier.Classifier
	store      domain.MessageStore
	router     *workflow.Router
	logger     *slog.Logger
}

type ProcessorConfig struct {
	Parser     *whatsapp.Parser
	Classifier *classifier.Classifier
	Store      domain.MessageStore
	Router     *workflow.Router
	Logger     *slog.Logger
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Parser == nil {
		cfg.Parser = whatsapp.NewParser()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Processor{
		parser:     cfg.Parser,
		classifier: cfg.Classifier,
		store:      cfg.Store,
		router:     cfg.Router,
		logger:     cfg.Logger,
	}
}

// Process handles one payload end to end. Malformed payloads are permanent
// failures: logged and swallowed so the queue never retries them. Any other
// error is returned for the pool to retry. A classification outage does not
// fail the message — it is stored and routed with the unknown category.
func (p *Processor) Process(ctx context.Context, payload map[string]any) error {
	msg, err := p.parser.Parse(payload)
	if err != nil {
		var payloadErr *whatsapp.PayloadError
		if errors.As(err, &payloadErr) {
			p.logger.Warn("invalid whatsapp payload", "err", err)
			return nil
		}
		p.logger.Error("error processing whatsapp message", "err", err)
		return err
	}

	start := time.Now()
	classification := p.classifier.Classify(ctx, msg.Body)
	metrics.ClassifyLatency.Observe(time.Since(start).Seconds())
	if !classification.Success {
		metrics.ClassifyFailures.Inc()
	}

	if err := p.store.SaveMessage(ctx, msg, classification); err != nil {
		p.logger.Error("error storing whatsapp message", "err", err)
		return err
	}

	if err := p.router.Route(ctx, msg, classification); err != nil {
		p.logger.Error("error routing whatsapp message", "err", err, "category", classification.Category)
		return err
	}

	metrics.MessagesProcessed.Inc()
	p.logger.Info("whatsapp message processed",
		"from", msg.From,
		"category", classification.Category,
		"confidence", classification.Confidence,
	)
	return nil
}
