package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmdai-tools/cmdai/internal/config"
)

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.URL = url
	cfg.Model = "test-model"
	cfg.PromptPrefix = "Only output the command."
	return cfg
}

func TestQuerySuccess(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{
			Model:    "test-model",
			Response: "  ls -la  \n",
			Done:     true,
		})
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL + "/api/generate"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := client.Query(context.Background(), "list all files")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got != "ls -la" {
		t.Errorf("Query() = %q, want trimmed %q", got, "ls -la")
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q, want test-model", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	wantPrompt := "Only output the command.\n\nlist all files"
	if gotReq.Prompt != wantPrompt {
		t.Errorf("request prompt = %q, want %q", gotReq.Prompt, wantPrompt)
	}
}

func TestQueryEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "   \n", Done: true})
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL + "/api/generate"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Query(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Query() error = %v, empty output is not an error", err)
	}
	if got != "" {
		t.Errorf("Query() = %q, want empty string", got)
	}
}

func TestQueryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL + "/api/generate"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Query(context.Background(), "anything")
	var unreachableErr *UnreachableError
	if !errors.As(err, &unreachableErr) {
		t.Fatalf("Query() error = %v, want *UnreachableError", err)
	}
	if unreachableErr.Status == "" {
		t.Error("UnreachableError has no status for an HTTP error response")
	}
}

func TestQueryConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(testConfig(server.URL + "/api/generate"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Query(context.Background(), "anything")
	var unreachableErr *UnreachableError
	if !errors.As(err, &unreachableErr) {
		t.Fatalf("Query() error = %v, want *UnreachableError", err)
	}
}

func TestQueryTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(generateResponse{Response: "too late"})
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL+"/api/generate"), WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Query(context.Background(), "anything")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Query() error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Timeout != 50*time.Millisecond {
		t.Errorf("TimeoutError.Timeout = %v, want 50ms", timeoutErr.Timeout)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(tagsResponse{Models: []tagsModel{
			{Name: "phi4:latest"},
			{Name: "llama3:8b"},
		}})
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL + "/api/generate"))
	if err != nil {
		t.Fatal(err)
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0] != "phi4:latest" || models[1] != "llama3:8b" {
		t.Errorf("ListModels() = %v", models)
	}
}

func TestNewUnknownBackendType(t *testing.T) {
	cfg := config.Default()
	cfg.BackendType = "openai"

	_, err := New(cfg)
	if err == nil {
		t.Fatal("New() accepted an unknown backend type")
	}
}

func TestQueryWithoutPrefix(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL + "/api/generate")
	cfg.PromptPrefix = ""
	client, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Query(context.Background(), "just the text"); err != nil {
		t.Fatal(err)
	}
	if gotReq.Prompt != "just the text" {
		t.Errorf("prompt = %q, want the bare user text", gotReq.Prompt)
	}
}
