package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jmertens/pmcminer/internal/nlp"
	"github.com/jmertens/pmcminer/internal/score"
)

// fakeAnalyzer returns a canned annotation for sentences mentioning
// patients and an empty one for everything else.
type fakeAnalyzer struct {
	err error
}

func (f *fakeAnalyzer) Annotate(_ context.Context, text string) (nlp.Annotation, error) {
	if f.err != nil {
		return nlp.Annotation{}, f.err
	}
	if strings.Contains(text, "patients") {
		return nlp.Annotation{
			Tokens:       []string{"Five", "patients", "were", "enrolled", "."},
			Lemmas:       []string{"five", "patient", "be", "enroll", "."},
			POSTags:      []string{"CD", "NNS", "VBD", "VBN", "."},
			Dependencies: []string{"nummod", "", "", "", ""},
		}, nil
	}
	return nlp.Annotation{}, nil
}

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Article(_ context.Context, pmcID string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestJob(id string, data []byte) *Job {
	job := &Job{
		ID:        id,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if data != nil {
		job.SetData(data, false)
	}
	return job
}

const workerNXML = `<article><body>
	<sec>
		<title>Methods</title>
		<p>Five patients were enrolled. The assay ran overnight.</p>
	</sec>
</body></article>`

func TestWorker_ProcessCompletes(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{}, &fakeFetcher{}, testLogger(), score.DefaultTables(), 2)
	job := newTestJob("w-1", []byte(workerNXML))

	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", job.Status, job.Snapshot().Progress.Errors)
	}
	snap := job.Snapshot()
	if snap.Progress.TotalSentences != 2 {
		t.Errorf("expected 2 sentences, got %d", snap.Progress.TotalSentences)
	}
	if snap.Progress.Annotated != 2 {
		t.Errorf("expected 2 annotated, got %d", snap.Progress.Annotated)
	}

	results := job.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 scored sentence, got %d", len(results))
	}
	got := results[0]
	if got.Scope != "body" {
		t.Errorf("expected body scope, got %q", got.Scope)
	}
	if got.Sentence.Section != "Methods" {
		t.Errorf("expected section Methods, got %q", got.Sentence.Section)
	}
	if got.Score != 5 {
		t.Errorf("expected fixed score 5, got %d", got.Score)
	}
	// "five" occurs once in a nummod position article-wide: 1 + 1/10.
	if math.Abs(got.WeightedScore-5.5) > 1e-9 {
		t.Errorf("expected weighted score 5.5, got %v", got.WeightedScore)
	}
}

func TestWorker_ProcessFetchesWhenNoData(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte(workerNXML)}
	w := NewWorker(&fakeAnalyzer{}, fetcher, testLogger(), score.DefaultTables(), 2)

	job := newTestJob("w-2", nil)
	job.PMCID = "PMC42"

	w.Process(context.Background(), job)

	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch call, got %d", fetcher.calls)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", job.Status)
	}
}

func TestWorker_ProcessFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("efetch down")}
	w := NewWorker(&fakeAnalyzer{}, fetcher, testLogger(), score.DefaultTables(), 2)

	job := newTestJob("w-3", nil)
	job.PMCID = "PMC42"

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", job.Status)
	}
	if errs := job.Snapshot().Progress.Errors; len(errs) == 0 {
		t.Error("expected fetch error recorded")
	}
}

func TestWorker_ProcessNoData(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{}, &fakeFetcher{}, testLogger(), score.DefaultTables(), 2)
	job := newTestJob("w-4", nil)

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed without data or pmc id, got %q", job.Status)
	}
}

func TestWorker_ProcessParseFailure(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{}, &fakeFetcher{}, testLogger(), score.DefaultTables(), 2)
	job := newTestJob("w-5", []byte("<"))

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed for unparseable document, got %q", job.Status)
	}
}

func TestWorker_ProcessAllAnnotationsFail(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{err: errors.New("annotator down")}, &fakeFetcher{},
		testLogger(), score.DefaultTables(), 2)
	job := newTestJob("w-6", []byte(workerNXML))

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed when every annotation fails, got %q", job.Status)
	}
}
