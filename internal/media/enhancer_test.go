package media

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/postline/postline/internal/logging"
	"github.com/stretchr/testify/assert"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHTTPEnhancer_ReplacesMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			MediaURLs []string `json:"mediaUrls"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		out := make([]string, len(in.MediaURLs))
		for i, u := range in.MediaURLs {
			out[i] = u + "?enhanced=1"
		}
		json.NewEncoder(w).Encode(map[string]any{"mediaUrls": out})
	}))
	defer srv.Close()

	e := NewHTTPEnhancer(srv.URL, srv.Client(), testLogger())
	got := e.Enhance(context.Background(), []string{"http://cdn/a.jpg", "http://cdn/b.jpg"})
	assert.Equal(t, []string{"http://cdn/a.jpg?enhanced=1", "http://cdn/b.jpg?enhanced=1"}, got)
}

func TestHTTPEnhancer_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEnhancer(srv.URL, srv.Client(), testLogger())
	original := []string{"http://cdn/a.jpg"}
	assert.Equal(t, original, e.Enhance(context.Background(), original))
}

func TestHTTPEnhancer_FallsBackOnWrongCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"mediaUrls": []string{}})
	}))
	defer srv.Close()

	e := NewHTTPEnhancer(srv.URL, srv.Client(), testLogger())
	original := []string{"http://cdn/a.jpg"}
	assert.Equal(t, original, e.Enhance(context.Background(), original))
}

func TestHTTPEnhancer_FallsBackOnUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e := NewHTTPEnhancer(srv.URL, nil, testLogger())
	original := []string{"http://cdn/a.jpg"}
	assert.Equal(t, original, e.Enhance(context.Background(), original))
}

func TestHTTPEnhancer_EmptyMediaSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	e := NewHTTPEnhancer(srv.URL, srv.Client(), testLogger())
	assert.Empty(t, e.Enhance(context.Background(), nil))
	assert.False(t, called)
}

func TestNoopEnhancer(t *testing.T) {
	original := []string{"http://cdn/a.jpg"}
	assert.Equal(t, original, NoopEnhancer{}.Enhance(context.Background(), original))
}
