package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/telephone/internal/processor"
	"codeberg.org/snonux/telephone/internal/queue"
	"codeberg.org/snonux/telephone/internal/translation"
)

// Defaults for the source and output collaborators
const (
	DefaultCatalogURL   = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	DefaultArchiveEntry = "assets/minecraft/lang/en_us.json"
	DefaultOutputDir    = "telephone-pack"
	DefaultPackFormat   = 34
	DefaultDescription  = "Translated by telephone"
)

// Checkpoint backends
const (
	CheckpointFile   = "file"
	CheckpointSQLite = "sqlite"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	LogLevel      string
	StatusAddr    string
	ListLanguages bool
	ListModels    bool

	// Source flags
	Input        string
	CatalogURL   string
	VersionID    string
	ArchiveEntry string
	CacheDir     string

	// Output flags
	OutputDir   string
	ResultPath  string
	PackFormat  int
	Description string
	Archive     bool

	// Run flags
	Passes       int
	Workers      int
	StaggerMs    int
	RetryDelayMs int
	RetryPolicy  string
	RetryMax     int

	// Translator flags
	Translator         string
	FallbackTranslator string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiModel        string
	ShellCommand       string
	CacheTranslations  bool
	BreakerFailures    int
	BreakerCooldown    time.Duration

	// Language flags
	LanguagesFrom string
	LanguagesFile string
	Languages     []string
	SourceLang    string

	// Checkpoint flags
	Resume             bool
	CheckpointDir      string
	CheckpointBackend  string
	CheckpointCompress bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	run := processor.DefaultRunConfig()
	return &Flags{
		LogLevel:          "info",
		CatalogURL:        DefaultCatalogURL,
		ArchiveEntry:      DefaultArchiveEntry,
		CacheDir:          defaultCacheDir(),
		OutputDir:         DefaultOutputDir,
		ResultPath:        DefaultArchiveEntry,
		PackFormat:        DefaultPackFormat,
		Description:       DefaultDescription,
		Passes:            run.RepeatPasses,
		Workers:           run.Workers,
		StaggerMs:         run.StartStaggerMs,
		RetryDelayMs:      run.RetryDelayMs,
		RetryPolicy:       run.RetryPolicy,
		Translator:        run.Translator,
		OpenAIModel:       "gpt-4o-mini",
		GeminiModel:       "gemini-2.0-flash",
		ShellCommand:      "trans",
		BreakerFailures:   5,
		BreakerCooldown:   30 * time.Second,
		SourceLang:        run.SourceLanguage,
		CheckpointDir:     ".",
		CheckpointBackend: CheckpointFile,
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "telephone")
	}
	return filepath.Join(dir, "telephone")
}

// LoadFromViper overwrites the flag values with the resolved viper values,
// so config file and environment apply to flags not given on the command
// line
func (f *Flags) LoadFromViper() {
	f.LogLevel = viper.GetString("log.level")
	f.StatusAddr = viper.GetString("status.addr")

	f.Input = viper.GetString("source.input")
	f.CatalogURL = viper.GetString("source.catalog_url")
	f.VersionID = viper.GetString("source.version")
	f.ArchiveEntry = viper.GetString("source.entry")
	f.CacheDir = viper.GetString("source.cache_dir")

	f.OutputDir = viper.GetString("output.directory")
	f.ResultPath = viper.GetString("output.result_path")
	f.PackFormat = viper.GetInt("output.pack_format")
	f.Description = viper.GetString("output.description")
	f.Archive = viper.GetBool("output.archive")

	f.Passes = viper.GetInt("run.passes")
	f.Workers = viper.GetInt("run.workers")
	f.StaggerMs = viper.GetInt("run.stagger_ms")
	f.RetryDelayMs = viper.GetInt("run.retry_delay_ms")
	f.RetryPolicy = viper.GetString("run.retry_policy")
	f.RetryMax = viper.GetInt("run.retry_max")

	f.Translator = viper.GetString("translator.backend")
	f.FallbackTranslator = viper.GetString("translator.fallback")
	f.OpenAIModel = viper.GetString("translator.openai_model")
	f.OpenAIBaseURL = viper.GetString("translator.openai_base_url")
	f.GeminiModel = viper.GetString("translator.gemini_model")
	f.ShellCommand = viper.GetString("translator.shell_command")
	f.CacheTranslations = viper.GetBool("translator.cache")
	f.BreakerFailures = viper.GetInt("translator.breaker_failures")
	f.BreakerCooldown = viper.GetDuration("translator.breaker_cooldown")

	f.LanguagesFrom = viper.GetString("languages.from")
	f.LanguagesFile = viper.GetString("languages.file")
	f.Languages = splitList(viper.GetStringSlice("languages.list"))
	f.SourceLang = viper.GetString("languages.source")

	f.CheckpointDir = viper.GetString("checkpoint.directory")
	f.CheckpointBackend = viper.GetString("checkpoint.backend")
	f.CheckpointCompress = viper.GetBool("checkpoint.compress")
}

// splitList accepts both YAML lists and comma separated strings
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// RunConfig returns the run configuration for a fresh run
func (f *Flags) RunConfig() processor.RunConfig {
	cfg := processor.RunConfig{
		RepeatPasses:   f.Passes,
		Workers:        f.Workers,
		StartStaggerMs: f.StaggerMs,
		RetryDelayMs:   f.RetryDelayMs,
		RetryPolicy:    f.RetryPolicy,
		RetryMax:       f.RetryMax,
		SourceLanguage: f.SourceLang,
		Translator:     f.Translator,
		Fallback:       f.FallbackTranslator,
		Model:          f.modelFor(f.Translator),
	}
	if cfg.RetryPolicy == "" {
		cfg.RetryPolicy = queue.PolicyFixed
	}
	return cfg
}

// PoolOptions returns where the language pool comes from. Without an
// explicit source a given language list wins over asking the translator.
func (f *Flags) PoolOptions() translation.PoolOptions {
	from := f.LanguagesFrom
	if from == "" {
		from = translation.PoolFromTranslator
		if len(f.Languages) > 0 {
			from = translation.PoolFromList
		}
	}
	return translation.PoolOptions{
		Source: from,
		File:   f.LanguagesFile,
		List:   f.Languages,
	}
}

func (f *Flags) modelFor(backend string) string {
	switch backend {
	case translation.BackendOpenAI:
		return f.OpenAIModel
	case translation.BackendGemini:
		return f.GeminiModel
	default:
		return ""
	}
}
