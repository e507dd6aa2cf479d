package classifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sitebot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// fakeOllama answers /api/generate with a canned response body and records
// the last request payload.
func fakeOllama(t *testing.T, status int, response string) (*httptest.Server, *generateRequest) {
	t.Helper()
	var last generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestClassify_Success(t *testing.T) {
	srv, req := fakeOllama(t, http.StatusOK,
		`{"category": "material_request", "confidence": "high", "reason": "asks for cement"}`)

	cls := New(Config{URL: srv.URL, Model: "llama3.2:latest", Logger: testLogger()})
	result := cls.Classify(context.Background(), "Need 10 more bags of cement delivered tomorrow")

	if !result.Success {
		t.Fatalf("success = false, error = %q", result.Error)
	}
	if result.Category != domain.CategoryMaterialRequest {
		t.Errorf("category = %q", result.Category)
	}
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %q", result.Confidence)
	}
	if result.ModelUsed != "llama3.2:latest" {
		t.Errorf("model = %q", result.ModelUsed)
	}
	if result.RawResponse == "" {
		t.Error("raw response not preserved")
	}
	if result.Error != "" {
		t.Errorf("error = %q, want empty", result.Error)
	}

	// Request shape sent to Ollama.
	if req.Model != "llama3.2:latest" {
		t.Errorf("request model = %q", req.Model)
	}
	if req.Stream {
		t.Error("stream should be false")
	}
	if req.Options.Temperature != defaultTemperature {
		t.Errorf("temperature = %v", req.Options.Temperature)
	}
	if req.Options.NumPredict != defaultResponseLength {
		t.Errorf("num_predict = %d", req.Options.NumPredict)
	}
	if !strings.Contains(req.Prompt, "Need 10 more bags of cement delivered tomorrow") {
		t.Error("prompt missing message body")
	}
}

func TestClassify_PromptListsCategories(t *testing.T) {
	srv, req := fakeOllama(t, http.StatusOK, `{"category": "other", "confidence": "low"}`)

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	cls.Classify(context.Background(), "hello")

	for _, cat := range domain.Categories() {
		if !strings.Contains(req.Prompt, string(cat)) {
			t.Errorf("prompt missing category %q", cat)
		}
	}
}

func TestClassify_ServerError(t *testing.T) {
	srv, _ := fakeOllama(t, http.StatusInternalServerError, "")

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	result := cls.Classify(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want unknown", result.Category)
	}
	if result.Confidence != domain.ConfidenceUnknown {
		t.Errorf("confidence = %q, want unknown", result.Confidence)
	}
	if result.Error != "ollama API error: 500" {
		t.Errorf("error = %q", result.Error)
	}
}

func TestClassify_Unreachable(t *testing.T) {
	// Port from a just-closed listener, near-certainly refused.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cls := New(Config{URL: url, Logger: testLogger()})
	result := cls.Classify(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Category != domain.CategoryUnknown || result.Confidence != domain.ConfidenceUnknown {
		t.Errorf("got %q/%q, want unknown/unknown", result.Category, result.Confidence)
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
}

func TestClassify_GarbageModelOutput(t *testing.T) {
	srv, _ := fakeOllama(t, http.StatusOK, "I am not able to classify this message.")

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	result := cls.Classify(context.Background(), "anything")

	// No JSON in the output: interpretation falls back to unknown/low, which
	// still parses, so the result is a low-confidence success.
	if !result.Success {
		t.Fatalf("success = false, error = %q", result.Error)
	}
	if result.Category != domain.CategoryUnknown {
		t.Errorf("category = %q, want unknown", result.Category)
	}
	if result.Confidence != domain.ConfidenceLow {
		t.Errorf("confidence = %q, want low", result.Confidence)
	}
}

func TestClassify_InvalidConfidence(t *testing.T) {
	srv, _ := fakeOllama(t, http.StatusOK,
		`{"category": "question", "confidence": "very sure", "reason": "x"}`)

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	result := cls.Classify(context.Background(), "anything")

	if result.Success {
		t.Fatal("expected failure for out-of-enum confidence")
	}
	if result.Category != domain.CategoryUnknown || result.Confidence != domain.ConfidenceUnknown {
		t.Errorf("got %q/%q, want unknown/unknown", result.Category, result.Confidence)
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
}

func TestClassify_InvalidCategoryCoercedToOther(t *testing.T) {
	srv, _ := fakeOllama(t, http.StatusOK,
		`{"category": "gossip", "confidence": "high", "reason": "x"}`)

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	result := cls.Classify(context.Background(), "anything")

	if !result.Success {
		t.Fatalf("success = false, error = %q", result.Error)
	}
	if result.Category != domain.CategoryOther {
		t.Errorf("category = %q, want other", result.Category)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cls := New(Config{URL: srv.URL, Logger: testLogger()})
	if err := cls.Healthy(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	srv.Close()
	if err := cls.Healthy(context.Background()); err == nil {
		t.Error("expected error after server closed")
	}
}

func TestNewDefaults(t *testing.T) {
	cls := New(Config{})
	if cls.url != defaultURL {
		t.Errorf("url = %q", cls.url)
	}
	if cls.Model() != defaultModel {
		t.Errorf("model = %q", cls.Model())
	}
	if cls.client.Timeout != defaultTimeout {
		t.Errorf("timeout = %v", cls.client.Timeout)
	}
}
