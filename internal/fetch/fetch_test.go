package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientArticle(t *testing.T) {
	const nxml = `<article><body><p>Hello.</p></body></article>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("db") != "pmc" {
			t.Errorf("expected db=pmc, got %q", q.Get("db"))
		}
		if q.Get("id") != "PMC1234567" {
			t.Errorf("expected id=PMC1234567, got %q", q.Get("id"))
		}
		w.Write([]byte(nxml))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	defer client.Close()

	data, err := client.Article(context.Background(), "PMC1234567")
	if err != nil {
		t.Fatalf("fetch article: %v", err)
	}
	if string(data) != nxml {
		t.Errorf("unexpected body: %q", data)
	}
}

func TestClientArticle_EmptyID(t *testing.T) {
	client := NewClient("http://localhost:1", 0)
	defer client.Close()

	if _, err := client.Article(context.Background(), ""); err == nil {
		t.Error("expected error for empty pmc id")
	}
}

func TestClientArticle_NotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such article", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	defer client.Close()

	if _, err := client.Article(context.Background(), "PMC0"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single attempt for 404, got %d", n)
	}
}

func TestClientArticle_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<article/>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	defer client.Close()

	data, err := client.Article(context.Background(), "PMC1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if string(data) != "<article/>" {
		t.Errorf("unexpected body: %q", data)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
}

func TestClientArticle_DelayHonorsContext(t *testing.T) {
	client := NewClient("http://localhost:1", time.Minute)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Article(ctx, "PMC1")
	if err == nil {
		t.Fatal("expected context error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("expected cancellation to cut the delay short, waited %v", elapsed)
	}
}
