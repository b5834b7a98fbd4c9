// Package wrangler runs the ingestion pipeline: enumerate a source, fetch
// and decode every reference, clean the result, and fold everything into a
// keyed collection. A failing reference never stops the run; it is reported
// as a Diagnostic instead.
package wrangler

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wrangle/internal/datasource"
	"wrangle/internal/metrics"
	"wrangle/internal/naming"
	"wrangle/internal/parser"
	"wrangle/internal/table"
	"wrangle/internal/transformer"
)

const defaultJob = "wrangle"

// Pipeline ingests every candidate file of one source. It keeps no per-run
// state, so Run may be called repeatedly.
type Pipeline struct {
	src     datasource.Source
	dec     *parser.Dispatcher
	clean   transformer.Transformer
	log     *slog.Logger
	workers int
	job     string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDispatcher replaces the default decoders.
func WithDispatcher(d *parser.Dispatcher) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.dec = d
		}
	}
}

// WithTransformer replaces transformer.Clean(). The transformer must be safe
// for concurrent use when more than one worker is configured.
func WithTransformer(t transformer.Transformer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.clean = t
		}
	}
}

// WithLogger sets the logger for progress and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithWorkers sets how many references are fetched and decoded at once.
// Values below 2 mean sequential processing.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithJob names the run in logs and metrics.
func WithJob(job string) Option {
	return func(p *Pipeline) {
		if strings.TrimSpace(job) != "" {
			p.job = job
		}
	}
}

// New returns a Pipeline reading from src.
func New(src datasource.Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		src:     src,
		dec:     parser.NewDispatcher(parser.Options{}),
		clean:   transformer.Clean(),
		log:     slog.Default(),
		workers: 1,
		job:     defaultJob,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of one run.
type Result struct {
	RunID       string
	Tables      *Collection
	Diagnostics []Diagnostic
}

// NamePair couples a short identifier-like name with the collection key of
// the same reference.
type NamePair struct {
	Short string
	Key   string
}

type outcome struct {
	t   *table.Table
	err error
}

// Run lists the source once and processes every reference in list order.
// Only a listing failure is returned as an error; everything that goes
// wrong with a single reference ends up in Result.Diagnostics.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Tables: NewCollection()}
	log := p.log.With("run_id", res.RunID, "job", p.job)

	start := time.Now()
	refs, err := p.src.List(ctx)
	metrics.RecordStep(p.job, "list", err, time.Since(start))
	if err != nil {
		log.Error("list source", "error", err)
		return nil, err
	}
	log.Debug("source listed", "refs", len(refs), "workers", p.workers)

	outs := p.processAll(ctx, refs)

	first := make(map[string]datasource.Ref, len(refs))
	for i, ref := range refs {
		key := p.src.Key(ref)
		o := outs[i]
		outcomeLabel := "failed"
		if o.err == nil {
			if prev, taken := first[key]; taken {
				o.err = &DuplicateKeyError{Key: key, Ref: ref, First: prev}
				outcomeLabel = "duplicate_key"
			}
		}
		if o.err != nil {
			metrics.RecordFile(p.job, outcomeLabel)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Ref: ref, Key: key, Err: o.err})
			log.Warn("skipping file", "ref", ref.Locator, "error", o.err)
			continue
		}
		first[key] = ref
		res.Tables.Put(key, o.t)
		metrics.RecordFile(p.job, "loaded")
		log.Info("table loaded", "key", key, "rows", o.t.Len(), "columns", len(o.t.Columns))
	}

	log.Info("run finished", "loaded", res.Tables.Len(), "failed", len(res.Diagnostics))
	return res, nil
}

// processAll fills one slot per reference. Slots are indexed by list
// position so the fold in Run does not depend on completion order.
func (p *Pipeline) processAll(ctx context.Context, refs []datasource.Ref) []outcome {
	outs := make([]outcome, len(refs))
	if p.workers < 2 || len(refs) < 2 {
		for i, ref := range refs {
			outs[i].t, outs[i].err = p.process(ctx, ref)
		}
		return outs
	}

	g := &errgroup.Group{}
	g.SetLimit(p.workers)
	for i, ref := range refs {
		g.Go(func() error {
			outs[i].t, outs[i].err = p.process(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	return outs
}

// process fetches, decodes and cleans a single reference. A panic in a
// decoder or transformer is confined to that reference.
func (p *Pipeline) process(ctx context.Context, ref datasource.Ref) (t *table.Table, err error) {
	defer func() {
		if v := recover(); v != nil {
			t, err = nil, &PanicError{Value: v}
		}
	}()
	return p.load(ctx, ref)
}

func (p *Pipeline) load(ctx context.Context, ref datasource.Ref) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Skip the fetch for files no decoder could read anyway.
	if !p.dec.Supports(ref.Ext) {
		return nil, &parser.UnsupportedFormatError{Ext: ref.Ext}
	}

	start := time.Now()
	rc, err := p.src.Open(ctx, ref)
	metrics.RecordStep(p.job, "fetch", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	start = time.Now()
	raw, err := p.dec.Decode(ref.Ext, rc)
	metrics.RecordStep(p.job, "decode", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.RecordRows(p.job, "decoded", int64(raw.Len()))

	start = time.Now()
	clean := p.clean.Apply(raw)
	metrics.RecordStep(p.job, "normalize", nil, time.Since(start))
	metrics.RecordRows(p.job, "deduplicated", int64(raw.Len()-clean.Len()))
	return clean, nil
}

// ListKeys enumerates the source the same way Run does and returns, for
// every reference, its short name and collection key. Nothing is fetched.
func (p *Pipeline) ListKeys(ctx context.Context) ([]NamePair, error) {
	refs, err := p.src.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]NamePair, len(refs))
	for i, ref := range refs {
		out[i] = NamePair{
			Short: naming.Short(stem(ref.Locator)),
			Key:   p.src.Key(ref),
		}
	}
	return out, nil
}

// stem returns the base name of locator without its final extension.
func stem(locator string) string {
	base := path.Base(strings.ReplaceAll(locator, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
