package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"codeberg.org/snonux/telephone/internal/checkpoint"
	"codeberg.org/snonux/telephone/internal/output"
	"codeberg.org/snonux/telephone/internal/processor"
	"codeberg.org/snonux/telephone/internal/source"
	"codeberg.org/snonux/telephone/internal/translation"
)

// Source is a document source that can name itself
type Source interface {
	processor.Source
	Describe() string
}

// NewSource returns the local file source when --input is set and the
// catalog source otherwise
func NewSource(flags *Flags, logger *slog.Logger) Source {
	if flags.Input != "" {
		return source.File{Path: flags.Input}
	}
	return source.NewCatalog(flags.CatalogURL, flags.VersionID, flags.ArchiveEntry, flags.CacheDir, logger)
}

// NewSink returns the output writer
func NewSink(flags *Flags, out io.Writer) *output.Writer {
	return output.NewWriter(output.Options{
		Dir:         flags.OutputDir,
		ResultPath:  flags.ResultPath,
		PackFormat:  flags.PackFormat,
		Description: flags.Description,
		Archive:     flags.Archive,
	}, out)
}

// NewStore opens the checkpoint store. The returned close function must be
// called when the run is over.
func NewStore(flags *Flags) (checkpoint.Store, func() error, error) {
	switch flags.CheckpointBackend {
	case "", CheckpointFile:
		var codec checkpoint.Codec = checkpoint.NewJSONCodec()
		if flags.CheckpointCompress {
			codec = checkpoint.NewLZ4Codec()
		}
		store := checkpoint.NewFileStore(flags.CheckpointDir, checkpoint.DefaultBasename, codec)
		return store, func() error { return nil }, nil
	case CheckpointSQLite:
		store, err := checkpoint.OpenSQLite(filepath.Join(flags.CheckpointDir, checkpoint.DefaultBasename+".db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open checkpoint database: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown checkpoint backend: %s", flags.CheckpointBackend)
	}
}

// TranslationConfig maps a run configuration onto the translator settings.
// The backend, fallback and model come from cfg, which on resume is the
// stored configuration; keys and tuning come from the flags.
func TranslationConfig(flags *Flags, cfg processor.RunConfig, logger *slog.Logger) translation.Config {
	tc := translation.Config{
		Backend:         cfg.Translator,
		Fallback:        cfg.Fallback,
		OpenAIKey:       GetOpenAIKey(),
		OpenAIBaseURL:   flags.OpenAIBaseURL,
		OpenAIModel:     flags.OpenAIModel,
		GeminiKey:       GetGeminiKey(),
		GeminiModel:     flags.GeminiModel,
		ShellCommand:    flags.ShellCommand,
		Cache:           flags.CacheTranslations,
		BreakerCooldown: flags.BreakerCooldown,
		Logger:          logger,
	}
	if flags.BreakerFailures > 0 {
		tc.BreakerFailures = uint32(flags.BreakerFailures)
	}

	if cfg.Model != "" {
		switch cfg.Translator {
		case translation.BackendOpenAI:
			tc.OpenAIModel = cfg.Model
		case translation.BackendGemini:
			tc.GeminiModel = cfg.Model
		}
	}
	return tc
}

// NewTranslatorFactory returns the factory the processor calls once the run
// configuration is final
func NewTranslatorFactory(flags *Flags, logger *slog.Logger) processor.TranslatorFactory {
	return func(ctx context.Context, cfg processor.RunConfig) (translation.Translator, error) {
		return translation.New(ctx, TranslationConfig(flags, cfg, logger))
	}
}
