package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

func TestJSONAttachesAuthHeaders(t *testing.T) {
	var gotAuth, gotDevice, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get("X-Device-ID")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("u-123"), WithDeviceID("dev-1"))
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.JSON(context.Background(), http.MethodGet, "/surveys", nil, &out); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if !out.OK {
		t.Fatalf("response not decoded: %+v", out)
	}
	if gotAuth != "Bearer u-123" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if gotDevice != "dev-1" {
		t.Fatalf("unexpected X-Device-ID header %q", gotDevice)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected Content-Type %q", gotContentType)
	}
}

func TestJSONAnonymousWithoutToken(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens(""))
	if err := c.JSON(context.Background(), http.MethodGet, "/surveys", nil, nil); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if hadAuth {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestJSONHTTPErrorNoRetry(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	notices := 0
	c := NewClient(srv.URL, nil, WithNotifier(func(string) { notices++ }))
	err := c.JSON(context.Background(), http.MethodGet, "/surveys", nil, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusInternalServerError || httpErr.Body != "boom" {
		t.Fatalf("unexpected error contents: %+v", httpErr)
	}
	if requests != 1 {
		t.Fatalf("expected exactly one request, got %d", requests)
	}
	if notices != 1 {
		t.Fatalf("expected one user notice, got %d", notices)
	}
}

func TestJSONEmptyBodyLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	out := map[string]string{"seed": "kept"}
	if err := c.JSON(context.Background(), http.MethodPost, "/responses", map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if out["seed"] != "kept" {
		t.Fatalf("out was mutated on empty body: %+v", out)
	}
}

func TestJSONNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nobody listening

	notices := 0
	c := NewClient(srv.URL, nil, WithNotifier(func(string) { notices++ }))
	err := c.JSON(context.Background(), http.MethodGet, "/surveys", nil, nil)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if notices != 1 {
		t.Fatalf("expected one user notice, got %d", notices)
	}
}
