package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Classify(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    gotReq.Model,
			Response: "```json\n{\"product_name\":\"Hardener B-22\",\"suggested_code\":\"3824.99\"}\n```",
			Done:     true,
		})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llava:13b"})
	if err != nil {
		t.Fatal(err)
	}

	c, err := p.Classify(context.Background(), ClassifyRequest{
		Documents: []Document{{Name: "page1.png", MIME: "image/png", Data: []byte{1, 2, 3}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.ProductName != "Hardener B-22" || c.SuggestedCode != "3824.99" {
		t.Errorf("unexpected classification: %+v", c)
	}

	if gotReq.Model != "llava:13b" {
		t.Errorf("model = %s", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("streaming must be disabled")
	}
	if len(gotReq.Images) != 1 {
		t.Errorf("got %d images, want 1", len(gotReq.Images))
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Classify(context.Background(), ClassifyRequest{}); err == nil {
		t.Error("expected error from 404 response")
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	p, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Advise(context.Background(), AdviseRequest{Question: "q"}); err == nil {
		t.Error("expected error when no model is configured")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("expected available against healthy daemon")
	}
}
