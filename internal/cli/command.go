package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/telephone/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "telephone",
		Short: "Telephone game translator for language files",
		Long: `telephone translates every string of a JSON language file through a
chain of randomly chosen languages and back into the source language.

Runs are interruptible: Ctrl-C finishes the translations in flight, saves a
checkpoint and exits. Run again with --resume to continue.

Examples:
  telephone                              # Latest release from the catalog
  telephone --input en_us.json           # Translate a local file
  telephone --passes 5 --languages fr,de,ja
  telephone --resume                     # Continue an interrupted run`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.telephone.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")

	f := cmd.Flags()

	// Source flags
	f.StringVarP(&flags.Input, "input", "i", "", "Translate a local JSON file instead of fetching from the catalog")
	f.StringVar(&flags.CatalogURL, "catalog-url", flags.CatalogURL, "Version catalog URL")
	f.StringVar(&flags.VersionID, "version-id", "", "Catalog version to fetch (default: latest release)")
	f.StringVar(&flags.ArchiveEntry, "archive-entry", flags.ArchiveEntry, "Archive entry holding the source document")
	f.StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "Directory for downloaded archives")

	// Output flags
	f.StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	f.StringVar(&flags.ResultPath, "result-path", flags.ResultPath, "Path of the result file inside the output directory")
	f.IntVar(&flags.PackFormat, "pack-format", flags.PackFormat, "pack_format written to the metadata file")
	f.StringVar(&flags.Description, "description", flags.Description, "Description written to the metadata file")
	f.BoolVar(&flags.Archive, "archive", false, "Archive an existing output directory before writing")

	// Run flags
	f.IntVarP(&flags.Passes, "passes", "p", flags.Passes, "Translation passes per string")
	f.IntVarP(&flags.Workers, "workers", "w", flags.Workers, "Concurrent translations (0 = unbounded)")
	f.IntVar(&flags.StaggerMs, "stagger", flags.StaggerMs, "Start delay in ms between workers")
	f.IntVar(&flags.RetryDelayMs, "retry-delay", flags.RetryDelayMs, "Delay in ms before retrying a failed translation")
	f.StringVar(&flags.RetryPolicy, "retry-policy", flags.RetryPolicy, "Retry policy: fixed or exponential")
	f.IntVar(&flags.RetryMax, "retry-max", 0, "Give up after this many attempts (0 = retry forever)")

	// Translator flags
	f.StringVarP(&flags.Translator, "translator", "t", flags.Translator, "Translator: openai, gemini or shell")
	f.StringVar(&flags.FallbackTranslator, "fallback-translator", "", "Translator to use when the primary one fails")
	f.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model")
	f.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "OpenAI compatible API base URL")
	f.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")
	f.StringVar(&flags.ShellCommand, "shell-command", flags.ShellCommand, "Command used by the shell translator")
	f.BoolVar(&flags.CacheTranslations, "cache-translations", false, "Reuse translations of identical strings")
	f.IntVar(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Consecutive failures that open the circuit breaker (0 = off)")
	f.DurationVar(&flags.BreakerCooldown, "breaker-cooldown", flags.BreakerCooldown, "How long an open circuit breaker rejects calls")

	// Language flags
	f.StringVar(&flags.LanguagesFrom, "languages-from", flags.LanguagesFrom, "Language pool source: translator, file or list (default: list when --languages is set, translator otherwise)")
	f.StringVar(&flags.LanguagesFile, "languages-file", "", "Language pool file (YAML list or one code per line)")
	f.StringSliceVarP(&flags.Languages, "languages", "l", nil, "Comma separated language pool (implies --languages-from list)")
	f.StringVar(&flags.SourceLang, "source-lang", flags.SourceLang, "Language of the source document")

	// Checkpoint flags
	f.BoolVarP(&flags.Resume, "resume", "r", false, "Resume from the saved checkpoint")
	f.StringVar(&flags.CheckpointDir, "checkpoint", flags.CheckpointDir, "Checkpoint directory")
	f.StringVar(&flags.CheckpointBackend, "checkpoint-backend", flags.CheckpointBackend, "Checkpoint backend: file or sqlite")
	f.BoolVar(&flags.CheckpointCompress, "checkpoint-compress", false, "LZ4 compress file checkpoints")

	// Status flags
	f.StringVar(&flags.StatusAddr, "status-addr", "", "Serve metrics and progress on this address, e.g. :9090")
	f.BoolVar(&flags.ListLanguages, "list-languages", false, "List the languages the translator supports")
	f.BoolVar(&flags.ListModels, "list-models", false, "List OpenAI chat models usable for translation")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

var viperBindings = map[string]string{
	"log.level":                   "log-level",
	"status.addr":                 "status-addr",
	"source.input":                "input",
	"source.catalog_url":          "catalog-url",
	"source.version":              "version-id",
	"source.entry":                "archive-entry",
	"source.cache_dir":            "cache-dir",
	"output.directory":            "output",
	"output.result_path":          "result-path",
	"output.pack_format":          "pack-format",
	"output.description":          "description",
	"output.archive":              "archive",
	"run.passes":                  "passes",
	"run.workers":                 "workers",
	"run.stagger_ms":              "stagger",
	"run.retry_delay_ms":          "retry-delay",
	"run.retry_policy":            "retry-policy",
	"run.retry_max":               "retry-max",
	"translator.backend":          "translator",
	"translator.fallback":         "fallback-translator",
	"translator.openai_model":     "openai-model",
	"translator.openai_base_url":  "openai-base-url",
	"translator.gemini_model":     "gemini-model",
	"translator.shell_command":    "shell-command",
	"translator.cache":            "cache-translations",
	"translator.breaker_failures": "breaker-failures",
	"translator.breaker_cooldown": "breaker-cooldown",
	"languages.from":              "languages-from",
	"languages.file":              "languages-file",
	"languages.list":              "languages",
	"languages.source":            "source-lang",
	"checkpoint.directory":        "checkpoint",
	"checkpoint.backend":          "checkpoint-backend",
	"checkpoint.compress":         "checkpoint-compress",
}

func bindFlagsToViper(cmd *cobra.Command) {
	for key, name := range viperBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag != nil {
			viper.BindPFlag(key, flag)
		}
	}
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded first; it never overrides variables already set.
func InitConfig(cfgFile string) {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".telephone" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".telephone")
	}

	// Environment variables, e.g. TELEPHONE_RUN_PASSES
	viper.SetEnvPrefix("TELEPHONE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translator.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return viper.GetString("translator.gemini_key")
}

// NewLogger creates the structured logger for the given level
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
