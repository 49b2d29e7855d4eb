package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/httpclient"
	"github.com/torosent/quickfire/internal/logging"
	"github.com/torosent/quickfire/internal/output"
	"github.com/torosent/quickfire/internal/runner"
	"github.com/torosent/quickfire/internal/tracing"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrHelpRequested):
			return nil
		case errors.Is(err, config.ErrVersionRequested):
			fmt.Fprintf(stdout, "quickfire %s\n", version)
			return nil
		}
		return err
	}

	logOpts := logging.DefaultOptions()
	logOpts.Verbose = cfg.Verbose
	logOpts.File = cfg.LogFile
	logOpts.Writer = stderr
	logger, closeLog := logging.New(logOpts)
	defer closeLog()

	logger.Debugw("options loaded",
		"verbose", cfg.Verbose,
		"url", cfg.TargetURL,
		"method", cfg.Method,
		"concurrency", cfg.Concurrency,
		"requests", cfg.Total,
		"engine", cfg.Engine,
		"config_file", cfg.ConfigFile,
	)

	// Nothing below may touch the network until the whole configuration,
	// method included, has been accepted.
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	runID := ulid.Make().String()
	tp, err := tracing.Init(ctx, cfg.Tracing, tracing.Run{ID: runID, Engine: string(cfg.Engine)})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("tracing shutdown failed", "error", err)
		}
	}()

	factory, err := newRequesterFactory(cfg, builder, tp, logger)
	if err != nil {
		return err
	}

	r, err := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		NewRequester:  factory,
	})
	if err != nil {
		return err
	}

	logger.Infow("run started",
		"run_id", runID,
		"method", builder.Method(),
		"url", builder.Target(),
		"concurrency", r.Concurrency(),
		"requests_per_worker", r.RequestsPerWorker(),
	)

	if cfg.Format == config.FormatText {
		output.PrintRequestLine(stdout, builder.Method(), builder.Target())
	}

	result, runErr := r.Run(ctx)

	mean, _ := result.Stats.MeanLatency()
	logger.Infow("run finished",
		"run_id", runID,
		"succeeded", result.Stats.Succeeded,
		"errored", result.Stats.Errored,
		"mean_latency", mean,
		"wall_clock", result.Duration,
	)

	report := output.NewReport(output.RunInfo{
		RunID:         runID,
		Method:        builder.Method(),
		URL:           builder.Target(),
		Engine:        string(cfg.Engine),
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
	}, result.Stats, result.Duration)

	if err := output.Print(stdout, cfg.Format, report); err != nil {
		return err
	}
	return runErr
}
