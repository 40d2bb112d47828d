package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/query"
	"github.com/dgallion1/personadoc/internal/rank"
	"github.com/dgallion1/personadoc/internal/refine"
	"github.com/dgallion1/personadoc/internal/score"
	"github.com/dgallion1/personadoc/internal/segment"
)

// Options configures every stage of an analysis run.
type Options struct {
	Segment segment.Config
	Query   query.Options
	Score   score.Options
	Rank    rank.Options
	Refine  refine.Options

	RefineTop   int // Ranked sections to refine; 0 means all
	Parallelism int // Concurrent documents; 0 means GOMAXPROCS, 1 is sequential

	Now func() time.Time // Clock for processing_timestamp; defaults to time.Now
}

// DefaultOptions returns the defaults of each stage.
func DefaultOptions() Options {
	return Options{
		Segment: segment.DefaultConfig(),
		Query:   query.DefaultOptions(),
		Score:   score.DefaultOptions(),
		Rank:    rank.DefaultOptions(),
		Refine:  refine.DefaultOptions(),
	}
}

// Analyzer runs the segment, score, rank and refine stages over a batch
// of documents. It holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	opts     Options
	seg      *segment.Segmenter
	analyzer *query.Analyzer
	log      *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts Options, log *slog.Logger) *Analyzer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		opts:     opts,
		seg:      segment.New(opts.Segment),
		analyzer: query.NewAnalyzer(),
		log:      log,
	}
}

// Analyze ranks the sections of docs against the persona and task.
// An empty query is fatal; a document with nothing to analyze is skipped
// and reported in the result warnings.
func (a *Analyzer) Analyze(ctx context.Context, docs []doctree.Document, persona, task string) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := a.log.With("run_id", runID)

	q, err := query.Build(persona, task, a.analyzer, a.opts.Query)
	if err != nil {
		return nil, err
	}
	log.Debug("query built", "terms", len(q.Terms), "phrases", len(q.Phrases), "query", q.String())

	// Phase 1: Segment and score each document. Scores depend only on the
	// section and the query, so documents are independent.
	scorer := score.New(q, a.opts.Score)
	work := make([]*docWork, len(docs))
	if err := a.fanOut(ctx, len(docs), func(i int) error {
		w, err := a.processDocument(scorer, docs[i], i)
		work[i] = w
		return err
	}); err != nil {
		return nil, err
	}

	var skipped []*segment.EmptyDocumentError
	var scored []score.Scored
	for _, w := range work {
		if w.skipped != nil {
			log.Warn("document skipped", "doc_id", w.skipped.DocumentID, "reason", w.skipped.Reason)
			skipped = append(skipped, w.skipped)
			continue
		}
		scored = append(scored, w.scored...)
	}

	// Phase 2: Rank and refine.
	ranked := rank.Rank(scored, a.opts.Rank)
	refineN := len(ranked)
	if a.opts.RefineTop > 0 && a.opts.RefineTop < refineN {
		refineN = a.opts.RefineTop
	}
	refiner := refine.New(q, a.opts.Refine)
	passages := make([]refine.Passage, refineN)
	for i := range refineN {
		passages[i] = refiner.Refine(ranked[i].Section)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := newResult(docs, persona, task, a.opts.Now())
	res.RunID = runID
	res.Ranked = ranked
	res.Passages = passages
	res.Skipped = skipped
	res.fill()
	res.Duration = time.Since(started)

	if len(skipped) == len(docs) && len(docs) > 0 {
		log.Warn("no document produced sections", "documents", len(docs))
	}
	log.Info("analysis complete",
		"documents", len(docs),
		"sections", len(scored),
		"ranked", len(ranked),
		"skipped", len(skipped),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// fanOut runs fn for 0..n-1 with bounded concurrency. Each call owns slot i
// of whatever the caller writes to, so no locking is needed.
func (a *Analyzer) fanOut(ctx context.Context, n int, fn func(i int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallelism)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
