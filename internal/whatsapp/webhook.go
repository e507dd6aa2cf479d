package whatsapp

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sitebot/internal/metrics"
	"sitebot/internal/queue"
)

// Webhook is the HTTP ingress for WhatsApp webhook events. It validates
// payload structure up front, rejecting malformed payloads as client errors,
// and queues everything else for the worker pool.
type Webhook struct {
	parser      *Parser
	queue       *queue.Memory
	path        string
	verifyToken string
	logger      *slog.Logger
	mux         *http.ServeMux
}

type WebhookConfig struct {
	Path        string
	VerifyToken string
	Queue       *queue.Memory
	Logger      *slog.Logger
}

func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.Path == "" {
		cfg.Path = "/webhooks/whatsapp"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &Webhook{
		parser:      NewParser(),
		queue:       cfg.Queue,
		path:        cfg.Path,
		verifyToken: cfg.VerifyToken,
		logger:      cfg.Logger,
		mux:         http.NewServeMux(),
	}
	w.mux.HandleFunc("GET "+w.path, w.handleVerification)
	w.mux.HandleFunc("POST "+w.path, w.handleIncoming)
	return w
}

// Handler returns the webhook routes to be mounted on the main server mux.
func (w *Webhook) Handler() http.Handler { return w.mux }

// handleVerification answers the WhatsApp webhook subscription challenge.
func (w *Webhook) handleVerification(rw http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == w.verifyToken {
		w.logger.Info("webhook verified")
		rw.WriteHeader(http.StatusOK)
		fmt.Fprint(rw, html.EscapeString(challenge))
		return
	}

	w.logger.Warn("webhook verification failed", "mode", mode)
	http.Error(rw, "Forbidden", http.StatusForbidden)
}

// handleIncoming validates an inbound event and queues it for processing.
func (w *Webhook) handleIncoming(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB max
	if err != nil {
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		w.logger.Warn("webhook bad payload", "err", err)
		writeJSON(rw, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// Quick structural validation so malformed payloads bounce at ingress
	// instead of dying in the queue.
	if _, err := w.parser.Parse(payload); err != nil {
		w.logger.Warn("invalid whatsapp payload", "err", err)
		metrics.PayloadRejections.Inc()
		writeJSON(rw, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.queue.Publish(queue.Job{Payload: payload, Received: time.Now()})
	metrics.MessagesReceived.Inc()
	w.logger.Info("whatsapp message queued for processing")

	writeJSON(rw, http.StatusAccepted, map[string]string{"status": "processing"})
}

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(body)
}
