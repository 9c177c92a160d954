package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRendererClient_RenderCover(t *testing.T) {
	var gotAuth string
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/render/cover" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url": "https://cdn.example.com/cover.png"}`))
	}))
	defer renderer.Close()

	c := NewRendererClient(&RendererConfig{
		BaseURL: renderer.URL,
		APIKey:  "render-key",
		Timeout: 5 * time.Second,
	})

	url, err := c.RenderCover(context.Background(), &CoverSpec{Title: "The Coaching Launch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/cover.png" {
		t.Errorf("unexpected artifact URL %q", url)
	}
	if gotAuth != "Bearer render-key" {
		t.Errorf("expected bearer credentials on render call, got %q", gotAuth)
	}
}

func TestRendererClient_RenderError(t *testing.T) {
	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "unsupported style"}`))
	}))
	defer renderer.Close()

	c := NewRendererClient(&RendererConfig{BaseURL: renderer.URL, APIKey: "render-key"})

	if _, err := c.RenderPDF(context.Background(), &PDFSpec{Title: "Guide"}); err == nil {
		t.Error("expected error from rejected render")
	}
}

func TestRendererClient_FetchSendsNoCredentials(t *testing.T) {
	// Artifacts live on a different host than the renderer; the renderer's
	// credentials must never travel there.
	var gotAuth string
	artifacts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer artifacts.Close()

	c := NewRendererClient(&RendererConfig{
		BaseURL: "http://renderer.internal",
		APIKey:  "render-key",
	})

	body, contentType, err := c.Fetch(context.Background(), artifacts.URL+"/cover.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("artifact fetch must carry no credentials, got %q", gotAuth)
	}
	if string(body) != "png-bytes" {
		t.Errorf("unexpected body %q", body)
	}
	if contentType != "image/png" {
		t.Errorf("unexpected content type %q", contentType)
	}
}
