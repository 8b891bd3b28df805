package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmertens/pmcminer/internal/config"
	"github.com/jmertens/pmcminer/internal/nlp"
	"github.com/jmertens/pmcminer/internal/pipeline"
	"github.com/jmertens/pmcminer/internal/score"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Annotate(context.Context, string) (nlp.Annotation, error) {
	return nlp.Annotation{}, nil
}

type nopFetcher struct{}

func (nopFetcher) Article(context.Context, string) ([]byte, error) {
	return nil, nil
}

const testAPIKey = "test-key"

// newTestServer builds a server without starting workers: submitted
// jobs stay queued, which is enough to exercise the handlers.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testAPIKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nopAnalyzer{}, nopFetcher{}, score.DefaultTables(), log)
	return NewServer(orch, nlp.NewClient("http://localhost:0", ""), log, cfg)
}

func uploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServer_AuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/nlp", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/nlp", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/stats/nlp", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", rec.Code)
	}
}

func TestServer_ParseArticle(t *testing.T) {
	srv := newTestServer(t)
	nxml := []byte(`<article>
		<front><article-meta>
			<title-group><article-title>Upload Test</article-title></title-group>
			<abstract><p>One abstract sentence.</p></abstract>
		</article-meta></front>
		<body><p>One body sentence.</p></body>
	</article>`)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/articles", "article.xml", nxml, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp articleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Upload Test" {
		t.Errorf("expected title Upload Test, got %q", resp.Title)
	}
	if len(resp.Abstract) != 1 || len(resp.FullText) != 1 {
		t.Errorf("expected 1 abstract and 1 body sentence, got %d/%d",
			len(resp.Abstract), len(resp.FullText))
	}
}

func TestServer_ParseArticle_BadDocument(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/articles", "bad.xml", []byte("<"), nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestServer_Mine(t *testing.T) {
	srv := newTestServer(t)
	nxml := []byte(`<article><body><p>Body sentence.</p></body></article>`)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/mine", "article.xml", nxml, nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if accepted.JobID == "" || accepted.Status != "queued" {
		t.Errorf("unexpected accept payload: %+v", accepted)
	}

	// Workers are not running, so the job stays queued.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, accepted.PollURL, nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from status endpoint, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/mine/"+accepted.JobID+"/results", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for unfinished job, got %d", rec.Code)
	}
}

func TestServer_MineProcessesJob(t *testing.T) {
	cfg := config.Config{
		APIKey:         testAPIKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nopAnalyzer{}, nopFetcher{}, score.DefaultTables(), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	srv := NewServer(orch, nlp.NewClient("http://localhost:0", ""), log, cfg)

	nxml := []byte(`<article><body><p>Body sentence.</p></body></article>`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/mine", "article.xml", nxml, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/mine/"+accepted.JobID+"/status", nil)
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from status endpoint, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		if snap.Status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", snap.Progress.Errors)
		}
		select {
		case <-deadline:
			t.Fatalf("job did not finish, status %q", snap.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mine/"+accepted.JobID+"/results", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from results endpoint, got %d", rec.Code)
	}
}

func TestServer_Mine_NoInput(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/mine", "", nil, map[string]string{}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file or pmc_id, got %d", rec.Code)
	}
}

func TestServer_MineStatus_UnknownJob(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mine/nope/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
