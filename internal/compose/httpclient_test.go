package compose

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFunctionClient_ComposeSuccess(t *testing.T) {
	var gotPath string
	var gotReq FunctionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(FunctionResponse{Content: "# Hola\n\ncuerpo"})
	}))
	defer server.Close()

	client := NewFunctionClient(server.URL)
	got, err := client.Compose(context.Background(), sampleBrief())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/compose" {
		t.Fatalf("expected POST /compose, got %s", gotPath)
	}
	if gotReq.Brief.BrandName != "Glasspoint" {
		t.Fatalf("expected brief forwarded, got %+v", gotReq.Brief)
	}
	if got != "# Hola\n\ncuerpo" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestFunctionClient_RevisePayload(t *testing.T) {
	var gotPath string
	var gotReq FunctionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(FunctionResponse{Content: "revisado"})
	}))
	defer server.Close()

	client := NewFunctionClient(server.URL)
	got, err := client.Revise(context.Background(), sampleBrief(), "borrador vigente", "mas corto")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/revise" {
		t.Fatalf("expected POST /revise, got %s", gotPath)
	}
	if gotReq.Current != "borrador vigente" || gotReq.Feedback != "mas corto" {
		t.Fatalf("expected current+feedback forwarded, got %+v", gotReq)
	}
	if got != "revisado" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestFunctionClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewFunctionClient(server.URL)
	_, err := client.Compose(context.Background(), sampleBrief())
	if err == nil || !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFunctionClient_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FunctionResponse{Error: "model unavailable"})
	}))
	defer server.Close()

	client := NewFunctionClient(server.URL)
	_, err := client.Compose(context.Background(), sampleBrief())
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestFunctionClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FunctionResponse{})
	}))
	defer server.Close()

	client := NewFunctionClient(server.URL)
	_, err := client.Compose(context.Background(), sampleBrief())
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("expected empty response error, got %v", err)
	}
}
