package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestOllamaClient_Generate(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3.1:8b" || req.Prompt != "hello" || req.Stream {
			t.Errorf("request mismatch: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "hi there"})
	}))
	defer backend.Close()

	c := NewOllamaClient(backend.URL, backend.URL, 5*time.Second, time.Second)
	got, err := c.Generate(context.Background(), "llama3.1:8b", "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "hi there" {
		t.Errorf("response = %q, want %q", got, "hi there")
	}
}

func TestOllamaClient_GenerateBackendDown(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1/api/generate", "http://127.0.0.1:1/api/tags",
		time.Second, time.Second)
	if _, err := c.Generate(context.Background(), "m", "p"); err == nil {
		t.Error("expected an error with no backend listening")
	}
}

func TestOllamaClient_GenerateNon2xx(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	c := NewOllamaClient(backend.URL, backend.URL, time.Second, time.Second)
	if _, err := c.Generate(context.Background(), "m", "p"); err == nil {
		t.Error("expected an error on 500")
	}
}

func TestOllamaClient_GenerateMalformedBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer backend.Close()

	c := NewOllamaClient(backend.URL, backend.URL, time.Second, time.Second)
	if _, err := c.Generate(context.Background(), "m", "p"); err == nil {
		t.Error("expected an error on malformed body")
	}
}

func TestOllamaClient_ListModels(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"models": []map[string]string{
				{"name": "zephyr"},
				{"name": "llama3.1:8b"},
				{"name": ""},
			},
		})
	}))
	defer backend.Close()

	c := NewOllamaClient(backend.URL, backend.URL, time.Second, time.Second)
	got := c.ListModels(context.Background())
	want := []string{"llama3.1:8b", "zephyr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("models = %v, want %v", got, want)
	}
}

func TestOllamaClient_ListModelsBackendDown(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1/api/generate", "http://127.0.0.1:1/api/tags",
		time.Second, time.Second)
	if got := c.ListModels(context.Background()); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
