package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/sync/semaphore"

	"codeberg.org/snonux/telephone/internal/checkpoint"
	"codeberg.org/snonux/telephone/internal/document"
	"codeberg.org/snonux/telephone/internal/queue"
	"codeberg.org/snonux/telephone/internal/translation"
	"codeberg.org/snonux/telephone/internal/walker"
)

// Status is how a run ended
type Status int

const (
	StatusCompleted Status = iota
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "Completed"
	case StatusInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// Source provides the document to translate
type Source interface {
	Load(ctx context.Context) (*document.Node, error)
}

// Sink receives the fully translated document and returns where it went
type Sink interface {
	Write(doc *document.Node) (string, error)
}

// TranslatorFactory builds the translator once the run configuration is
// known, which on resume is only after the checkpoint was loaded
type TranslatorFactory func(ctx context.Context, cfg RunConfig) (translation.Translator, error)

// Options configures a Processor
type Options struct {
	// Config is the configuration for a fresh run
	Config RunConfig

	// Pool selects the language pool when Config.Languages is empty
	Pool translation.PoolOptions

	Store         checkpoint.Store
	Sink          Sink
	NewTranslator TranslatorFactory

	// Recorder receives leaf events, for metrics
	Recorder walker.Recorder

	// OnStart is called once the walk is about to begin
	OnStart func(progress *walker.Progress, leaves int, cfg RunConfig)

	// Out receives user-facing messages, stdout when nil
	Out    io.Writer
	Logger *slog.Logger
}

// Result describes a finished run
type Result struct {
	Status         Status
	Document       *document.Node
	Progress       map[string]int
	Done           []string
	Config         RunConfig
	Leaves         int
	Passes         int
	OutputPath     string
	CheckpointPath string
	Duration       time.Duration
}

// Processor drives a single run
type Processor struct {
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

// NewProcessor creates a new run driver
func NewProcessor(opts Options) *Processor {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{opts: opts, out: out, logger: logger}
}

// Run translates the document from src. With resume set, a stored
// checkpoint replaces the source document, its progress and the run
// configuration; without a checkpoint the run starts fresh.
//
// When ctx is cancelled the walk stops at the next safe point, a checkpoint
// is saved and the result has StatusInterrupted. A failed checkpoint save is
// returned as an error.
func (p *Processor) Run(ctx context.Context, src Source, resume bool) (Result, error) {
	start := time.Now()
	cfg := p.opts.Config

	var (
		doc      *document.Node
		progress map[string]int
		done     []string
	)

	if resume {
		rec, stored, err := p.loadCheckpoint(ctx, src)
		if err != nil {
			return Result{}, err
		}
		if rec != nil {
			cfg = stored
			doc, progress, done = rec.Document, rec.Progress, rec.Done
		}
	}

	if doc == nil {
		var err error
		if doc, err = src.Load(ctx); err != nil {
			return Result{}, fmt.Errorf("failed to load source: %w", err)
		}
	}

	if err := cfg.ValidateSettings(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	translator, err := p.opts.NewTranslator(ctx, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create translator: %w", err)
	}

	if len(cfg.Languages) == 0 {
		pool := p.opts.Pool
		pool.SourceLanguage = cfg.SourceLanguage
		if cfg.Languages, err = translation.LoadPool(ctx, translator, pool); err != nil {
			return Result{}, fmt.Errorf("failed to load language pool: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	w, tracker, err := p.newWalker(cfg, translator, progress, done)
	if err != nil {
		return Result{}, err
	}

	leaves := len(document.Leaves(doc))
	fmt.Fprintf(p.out, "Translating %s leaves with %s: %d passes over %d languages, %d workers\n",
		humanize.Comma(int64(leaves)), translator.Name(), cfg.RepeatPasses, len(cfg.Languages), cfg.Workers)
	if p.opts.OnStart != nil {
		p.opts.OnStart(tracker, leaves, cfg)
	}

	noticed := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(noticed)
		color.New(color.FgYellow).Fprintln(p.out, "\nInterrupt received, finishing in-flight translations and saving checkpoint...")
	})

	translated, walkErr := w.Walk(ctx, doc, "")
	if !stop() {
		<-noticed
	}

	result := Result{
		Document: translated,
		Progress: tracker.Snapshot(),
		Done:     tracker.Done(),
		Config:   cfg,
		Leaves:   leaves,
		Passes:   tracker.Completed(),
	}

	if errors.Is(walkErr, walker.ErrInterrupted) {
		return p.interrupt(result, start)
	}
	if walkErr != nil {
		return Result{}, fmt.Errorf("translation failed: %w", walkErr)
	}

	outputPath, err := p.opts.Sink.Write(translated)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write output: %w", err)
	}
	if err := p.opts.Store.Clear(); err != nil {
		return Result{}, fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	result.Status = StatusCompleted
	result.OutputPath = outputPath
	result.Duration = time.Since(start)

	fmt.Fprintf(p.out, "\n=== Translation Summary ===\n")
	fmt.Fprintf(p.out, "Leaves: %s\n", humanize.Comma(int64(result.Leaves)))
	fmt.Fprintf(p.out, "Passes: %s\n", humanize.Comma(int64(result.Passes)))
	fmt.Fprintf(p.out, "Output: %s\n", result.OutputPath)
	fmt.Fprintf(p.out, "Time:   %s\n", result.Duration.Round(time.Second))
	fmt.Fprintf(p.out, "===========================\n")
	return result, nil
}

// loadCheckpoint returns the validated checkpoint and its run
// configuration, or a nil record when none exists
func (p *Processor) loadCheckpoint(ctx context.Context, src Source) (*checkpoint.Record, RunConfig, error) {
	var stored RunConfig

	rec, err := p.opts.Store.Load()
	if errors.Is(err, checkpoint.ErrNoCheckpoint) {
		fmt.Fprintf(p.out, "No checkpoint at %s, starting a fresh run\n", p.opts.Store.Location())
		return nil, stored, nil
	}
	if err != nil {
		return nil, stored, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := rec.DecodeConfig(&stored); err != nil {
		return nil, stored, err
	}

	fresh, err := src.Load(ctx)
	if err != nil {
		return nil, stored, fmt.Errorf("failed to load source: %w", err)
	}
	if err := rec.Validate(stored.RepeatPasses, fresh); err != nil {
		return nil, stored, err
	}

	done := 0
	for _, n := range rec.Progress {
		done += n
	}
	fmt.Fprintf(p.out, "Resuming checkpoint from %s (%s passes done)\n",
		rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Comma(int64(done)))
	return rec, stored, nil
}

func (p *Processor) newWalker(cfg RunConfig, translator translation.Translator, initial map[string]int, done []string) (*walker.Walker, *walker.Progress, error) {
	policy, err := cfg.NewRetryPolicy()
	if err != nil {
		return nil, nil, err
	}

	var limiter *semaphore.Weighted
	if cfg.Workers > 0 {
		limiter = semaphore.NewWeighted(int64(cfg.Workers))
	}

	progress := walker.NewProgress(initial)
	progress.MarkDone(done)
	leaf, err := walker.NewLeafMachine(walker.LeafConfig{
		RepeatPasses:   cfg.RepeatPasses,
		Languages:      cfg.Languages,
		SourceLanguage: cfg.SourceLanguage,
		Translator:     translator,
		Progress:       progress,
		Retry:          policy,
		Limiter:        limiter,
		Recorder:       p.opts.Recorder,
		Logger:         p.logger,
	})
	if err != nil {
		return nil, nil, err
	}

	// leaves retry their own passes, walker tasks never fail
	w := walker.New(leaf, queue.Options{
		Workers:      cfg.Workers,
		StartStagger: cfg.StartStagger(),
	})
	return w, progress, nil
}

// interrupt saves the checkpoint of an interrupted run
func (p *Processor) interrupt(result Result, start time.Time) (Result, error) {
	rec, err := checkpoint.NewRecord(result.Document, result.Progress, result.Config)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build checkpoint: %w", err)
	}
	rec.Done = result.Done
	if err := p.opts.Store.Save(rec); err != nil {
		return Result{}, fmt.Errorf("failed to save checkpoint: %w", err)
	}

	result.Status = StatusInterrupted
	result.CheckpointPath = p.opts.Store.Location()
	result.Duration = time.Since(start)

	size := ""
	if sized, ok := p.opts.Store.(interface{ Size() (int64, error) }); ok {
		if n, err := sized.Size(); err == nil {
			size = " (" + humanize.Bytes(uint64(n)) + ")"
		}
	}

	total := result.Leaves * result.Config.RepeatPasses
	fmt.Fprintf(p.out, "Checkpoint saved to %s%s\n", result.CheckpointPath, size)
	fmt.Fprintf(p.out, "Completed %s of %s passes, run again with --resume to continue\n",
		humanize.Comma(int64(result.Passes)), humanize.Comma(int64(total)))
	return result, nil
}
