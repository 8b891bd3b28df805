package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jmertens/pmcminer/internal/article"
	"github.com/jmertens/pmcminer/internal/nlp"
	"github.com/jmertens/pmcminer/internal/score"
)

// Fetcher retrieves article NXML by PMC id.
type Fetcher interface {
	Article(ctx context.Context, pmcID string) ([]byte, error)
}

// Worker processes a single mining job: obtain the document, walk it
// into sentences, annotate, then score.
type Worker struct {
	analyzer nlp.Analyzer
	fetcher  Fetcher
	log      *slog.Logger
	tables   score.Tables

	maxConcurrentAnnotate int
}

func NewWorker(analyzer nlp.Analyzer, fetcher Fetcher, log *slog.Logger, tables score.Tables, maxAnnotate int) *Worker {
	if maxAnnotate <= 0 {
		maxAnnotate = 1
	}
	return &Worker{
		analyzer:              analyzer,
		fetcher:               fetcher,
		log:                   log,
		tables:                tables,
		maxConcurrentAnnotate: maxAnnotate,
	}
}

// scopedSentence tags a sentence with the extraction scope it came from.
type scopedSentence struct {
	scope    string
	sentence *article.Sentence
}

// Process runs the full mining pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	data, isHTML := job.Data()
	if len(data) == 0 && job.PMCID != "" {
		job.SetStatus(StatusFetching, "fetching")
		fetched, err := w.fetcher.Article(ctx, job.PMCID)
		if err != nil {
			log.Error("fetch failed", "pmc_id", job.PMCID, "error", err)
			job.AddError(fmt.Sprintf("fetch: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
		data = fetched
		job.SetData(data, false)
	}
	if len(data) == 0 {
		job.AddError("no document data")
		job.SetStatus(StatusFailed, "fetching")
		return
	}

	job.SetStatus(StatusParsing, "parsing")
	var art *article.Article
	var err error
	if isHTML {
		art, err = article.ParseHTML(bytes.NewReader(data))
	} else {
		art, err = article.Parse(bytes.NewReader(data))
	}
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetStatus(StatusSegmenting, "segmenting")
	var all []scopedSentence
	for _, s := range art.Abstract() {
		all = append(all, scopedSentence{scope: "abstract", sentence: s})
	}
	for _, s := range art.FullText() {
		all = append(all, scopedSentence{scope: "body", sentence: s})
	}
	job.SetTotalSentences(len(all))
	log.Info("segmented article", "sentences", len(all))

	if len(all) == 0 {
		job.AddError("no sentences extracted")
		job.SetStatus(StatusFailed, "segmenting")
		return
	}

	// Annotate with bounded concurrency. Annotation failures degrade
	// that sentence only.
	job.SetStatus(StatusAnnotating, "annotating")
	sem := make(chan struct{}, w.maxConcurrentAnnotate)
	done := make(chan error, len(all))
	for _, ss := range all {
		sem <- struct{}{}
		go func(s *article.Sentence) {
			defer func() { <-sem }()
			_, err := s.Annotation(ctx, w.analyzer)
			done <- err
		}(ss.sentence)
	}
	annotateErrs := 0
	for range all {
		if err := <-done; err != nil {
			annotateErrs++
			if annotateErrs <= 5 {
				job.AddError(fmt.Sprintf("annotate: %s", err))
			}
			continue
		}
		job.IncrAnnotated()
	}
	if annotateErrs == len(all) {
		log.Error("all annotations failed", "sentences", len(all))
		job.SetStatus(StatusFailed, "annotating")
		return
	}

	job.SetStatus(StatusScoring, "scoring")
	numCounts := numeralCounts(ctx, w.analyzer, all)

	var results []ScoredSentence
	for _, ss := range all {
		ann, err := ss.sentence.Annotation(ctx, w.analyzer)
		if err != nil {
			continue
		}
		fixed := score.Demographic(ann, ss.sentence.Section, ss.sentence.Subsection, w.tables)
		if fixed == 0 && !score.HasAnchor(ann.Lemmas) {
			continue
		}
		results = append(results, ScoredSentence{
			Scope:         ss.scope,
			Sentence:      ss.sentence,
			Score:         fixed,
			WeightedScore: score.DemographicWeighted(ann, numCounts, w.tables),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].WeightedScore > results[j].WeightedScore
	})
	job.SetResults(results)
	log.Info("scoring complete", "candidates", len(results), "annotate_errors", annotateErrs)

	if annotateErrs > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// numeralCounts tallies, across the whole article, how often each
// numeral lemma appears in a nummod position. The tally feeds the
// frequency-weighted scoring policy.
func numeralCounts(ctx context.Context, analyzer nlp.Analyzer, all []scopedSentence) map[string]int {
	counts := make(map[string]int)
	for _, ss := range all {
		ann, err := ss.sentence.Annotation(ctx, analyzer)
		if err != nil {
			continue
		}
		for _, i := range score.NummodIndices(ann) {
			counts[ann.Lemmas[i]]++
		}
	}
	return counts
}
