package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/telephone/internal/cli"
	"codeberg.org/snonux/telephone/internal/metrics"
	"codeberg.org/snonux/telephone/internal/models"
	"codeberg.org/snonux/telephone/internal/processor"
	"codeberg.org/snonux/telephone/internal/translation"
	"codeberg.org/snonux/telephone/internal/walker"
)

// exitInterrupted is the exit code after a checkpoint was saved
const exitInterrupted = 130

var errInterrupted = errors.New("interrupted")

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInterrupted) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	flags.LoadFromViper()

	logger, err := cli.NewLogger(flags.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	// Later signals are absorbed so the checkpoint save is never cut short
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle --list-models flag
	if flags.ListModels {
		return models.NewLister(cli.GetOpenAIKey(), flags.OpenAIBaseURL).PrintModels(ctx, os.Stdout)
	}

	// Handle --list-languages flag
	if flags.ListLanguages {
		t, err := cli.NewTranslatorFactory(flags, logger)(ctx, flags.RunConfig())
		if err != nil {
			return err
		}
		return translation.PrintLanguages(ctx, t, os.Stdout)
	}

	store, closeStore, err := cli.NewStore(flags)
	if err != nil {
		return err
	}
	defer closeStore()

	src := cli.NewSource(flags, logger)
	fmt.Printf("Source: %s\n", src.Describe())

	recorder := metrics.New()
	var status *metrics.Server
	if flags.StatusAddr != "" {
		status = metrics.NewServer(flags.StatusAddr, recorder, logger)
		addr, err := status.Start()
		if err != nil {
			return err
		}
		fmt.Printf("Status server listening on http://%s\n", addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			status.Stop(shutdownCtx)
		}()
	}

	proc := processor.NewProcessor(processor.Options{
		Config:        flags.RunConfig(),
		Pool:          flags.PoolOptions(),
		Store:         store,
		Sink:          cli.NewSink(flags, os.Stdout),
		NewTranslator: cli.NewTranslatorFactory(flags, logger),
		Recorder:      recorder,
		OnStart: func(progress *walker.Progress, leaves int, cfg processor.RunConfig) {
			if status != nil {
				status.Track(progress, leaves, cfg.RepeatPasses)
			}
		},
		Out:    os.Stdout,
		Logger: logger,
	})

	result, err := proc.Run(ctx, src, flags.Resume)
	if err != nil {
		return err
	}
	if result.Status == processor.StatusInterrupted {
		return errInterrupted
	}
	return nil
}
