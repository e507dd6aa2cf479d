package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"sitebot/internal/classifier"
	"sitebot/internal/domain"
	"sitebot/internal/workflow"
)

var errTransient = errors.New("transient store failure")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// memStore records saved messages in memory.
type memStore struct {
	mu    sync.Mutex
	saved []domain.WorkflowContext
	err   error
}

func (s *memStore) SaveMessage(_ context.Context, msg domain.ParsedMessage, result domain.ClassificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, domain.WorkflowContext{Message: msg, Classification: result})
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *memStore) last() domain.WorkflowContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

// recorder captures workflow side effects.
type recorder struct {
	mu       sync.Mutex
	notified []string
	tickets  []domain.Priority
}

func (r *recorder) Notify(_ context.Context, recipient string, _ domain.WorkflowContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, recipient)
	return nil
}

func (r *recorder) CreateTicket(_ context.Context, _ domain.WorkflowContext, priority domain.Priority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = append(r.tickets, priority)
	return nil
}

// fakeOllama answers /api/generate with a fixed classification payload.
func fakeOllama(t *testing.T, status int, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func payloadWithBody(t *testing.T, body string) map[string]any {
	t.Helper()
	raw := map[string]any{
		"entry": []any{map[string]any{
			"changes": []any{map[string]any{
				"value": map[string]any{
					"messages": []any{map[string]any{
						"from": "15551234567",
						"type": "text",
						"text": map[string]any{"body": body},
					}},
				},
			}},
		}},
	}
	return raw
}

func newTestProcessor(t *testing.T, ollamaURL string, store domain.MessageStore, rec *recorder) *Processor {
	t.Helper()
	return NewProcessor(ProcessorConfig{
		Classifier: classifier.New(classifier.Config{URL: ollamaURL, Logger: testLogger()}),
		Store:      store,
		Router: workflow.NewRouter(workflow.RouterConfig{
			Notifier: rec,
			Tickets:  rec,
			Logger:   testLogger(),
		}),
		Logger: testLogger(),
	})
}

func TestProcess_MaterialRequestEndToEnd(t *testing.T) {
	srv := fakeOllama(t, http.StatusOK,
		`{"category": "material_request", "confidence": "high", "reason": "requests cement"}`)
	store := &memStore{}
	rec := &recorder{}
	proc := newTestProcessor(t, srv.URL, store, rec)

	payload := payloadWithBody(t, "Need 10 more bags of cement delivered tomorrow")
	if err := proc.Process(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.count() != 1 {
		t.Fatalf("stored = %d, want 1", store.count())
	}
	saved := store.last()
	if saved.Classification.Category != domain.CategoryMaterialRequest {
		t.Errorf("stored category = %q", saved.Classification.Category)
	}
	if saved.Message.From != "15551234567" {
		t.Errorf("stored from = %q", saved.Message.From)
	}

	if len(rec.notified) != 1 || rec.notified[0] != "procurement_team" {
		t.Errorf("notified = %v, want [procurement_team]", rec.notified)
	}
	if len(rec.tickets) != 1 || rec.tickets[0] != domain.PriorityNormal {
		t.Errorf("tickets = %v, want [normal]", rec.tickets)
	}
}

func TestProcess_SafetyIncidentEndToEnd(t *testing.T) {
	srv := fakeOllama(t, http.StatusOK,
		`{"category": "safety_incident", "confidence": "high", "reason": "injury reported"}`)
	store := &memStore{}
	rec := &recorder{}
	proc := newTestProcessor(t, srv.URL, store, rec)

	payload := payloadWithBody(t, "Worker fell from scaffolding on level 3, ambulance called")
	if err := proc.Process(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.notified) != 2 {
		t.Fatalf("notified = %v, want supervisor and safety_officer", rec.notified)
	}
	if len(rec.tickets) != 1 || rec.tickets[0] != domain.PriorityCritical {
		t.Errorf("tickets = %v, want [critical]", rec.tickets)
	}
}

func TestProcess_MalformedPayloadSwallowed(t *testing.T) {
	srv := fakeOllama(t, http.StatusOK, `{"category": "other", "confidence": "low"}`)
	store := &memStore{}
	rec := &recorder{}
	proc := newTestProcessor(t, srv.URL, store, rec)

	// Permanent failure: no error, so the pool never retries.
	if err := proc.Process(context.Background(), map[string]any{"entry": []any{}}); err != nil {
		t.Fatalf("parse failure must be swallowed, got %v", err)
	}
	if store.count() != 0 {
		t.Errorf("stored = %d, want 0", store.count())
	}
	if len(rec.notified) != 0 || len(rec.tickets) != 0 {
		t.Error("no workflow should run for a malformed payload")
	}
}

func TestProcess_ClassifierOutageDegrades(t *testing.T) {
	srv := fakeOllama(t, http.StatusInternalServerError, "")
	store := &memStore{}
	rec := &recorder{}
	proc := newTestProcessor(t, srv.URL, store, rec)

	payload := payloadWithBody(t, "anything at all")
	if err := proc.Process(context.Background(), payload); err != nil {
		t.Fatalf("classifier outage must not fail the message, got %v", err)
	}

	if store.count() != 1 {
		t.Fatalf("stored = %d, want 1 even when classification failed", store.count())
	}
	saved := store.last()
	if saved.Classification.Success {
		t.Error("classification should have failed")
	}
	if saved.Classification.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want unknown", saved.Classification.Category)
	}
	if saved.Classification.Error != "ollama API error: 500" {
		t.Errorf("error = %q", saved.Classification.Error)
	}

	// unknown routes to manual review: no notifications, no tickets.
	if len(rec.notified) != 0 || len(rec.tickets) != 0 {
		t.Error("manual review must not trigger side effects")
	}
}

func TestProcess_StoreErrorReturned(t *testing.T) {
	srv := fakeOllama(t, http.StatusOK, `{"category": "site_note", "confidence": "medium"}`)
	storeErr := errors.New("disk full")
	store := &memStore{err: storeErr}
	proc := newTestProcessor(t, srv.URL, store, &recorder{})

	err := proc.Process(context.Background(), payloadWithBody(t, "poured foundation today"))
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want %v for pool retry", err, storeErr)
	}
}
