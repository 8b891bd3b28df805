package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientAnnotate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/annotate" {
			t.Errorf("expected path /annotate, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "Five patients enrolled." {
			t.Errorf("unexpected request text: %q", req.Text)
		}

		json.NewEncoder(w).Encode(Annotation{
			Tokens:       []string{"Five", "patients", "enrolled", "."},
			Lemmas:       []string{"five", "patient", "enroll", "."},
			POSTags:      []string{"CD", "NNS", "VBD", "."},
			Dependencies: []string{"nummod", "", "", ""},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	defer client.Close()

	ann, err := client.Annotate(context.Background(), "Five patients enrolled.")
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(ann.Lemmas) != 4 || ann.Lemmas[1] != "patient" {
		t.Errorf("unexpected lemmas: %v", ann.Lemmas)
	}
	if ann.Dependencies[0] != "nummod" {
		t.Errorf("unexpected dependencies: %v", ann.Dependencies)
	}

	snap := client.StatsSnapshot()
	if snap.Count != 1 {
		t.Errorf("expected 1 recorded call, got %d", snap.Count)
	}
}

func TestClientAnnotate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(Annotation{Tokens: []string{"ok"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	defer client.Close()

	ann, err := client.Annotate(context.Background(), "text")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(ann.Tokens) != 1 {
		t.Errorf("unexpected annotation: %+v", ann)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestClientAnnotate_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	defer client.Close()

	if _, err := client.Annotate(context.Background(), "text"); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single attempt for a client error, got %d", n)
	}
}
