package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const usage = "quickfire [flags] [METHOD] URL [BODY]"

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           usage,
		Short:         "Measure HTTP latency and sustained request rate",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "Log every exchange and the loaded options to stderr")
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.IntP("requests", "n", 1, "Total number of requests (must be a multiple of concurrency)")
	flags.Bool("version", false, "Print version information and exit")

	flags.StringSliceP("header", "H", nil, "Additional request header in key=value form")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.Duration("timeout", 30*time.Second, "Per-request client timeout (0 disables)")
	flags.String("engine", string(EngineNetHTTP), "HTTP client engine: 'nethttp' or 'fasthttp'")

	flags.String("format", string(FormatText), "Report format: 'text', 'json' or 'yaml'")
	flags.String("log-file", "", "Also write logs to this file (rotated)")
	flags.String("config", "", "Path to configuration file (JSON, YAML or TOML)")

	flags.String("trace-endpoint", "", "OTLP collector endpoint; enables per-exchange spans")
	flags.String("trace-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("trace-service-name", "", "Service name reported on spans")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of exchanges to trace (0.0 - 1.0)")
	flags.Bool("trace-insecure", false, "Use a plaintext connection to the collector")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Total = val
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = val
		cfg.Body = ""
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("engine") {
		val, err := fs.GetString("engine")
		if err != nil {
			return err
		}
		cfg.Engine = Engine(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = Format(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("log-file") {
		val, err := fs.GetString("log-file")
		if err != nil {
			return err
		}
		cfg.LogFile = strings.TrimSpace(val)
	}
	if err := applyTracingFlags(&cfg.Tracing, fs); err != nil {
		return err
	}

	vals, err := fs.GetStringSlice("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := strings.TrimSpace(parts[0])
			if key == "" {
				return fmt.Errorf("header key cannot be empty: %s", entry)
			}
			cfg.Headers[http.CanonicalHeaderKey(key)] = strings.TrimSpace(parts[1])
		}
	}
	return nil
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	return nil
}

// applyPositionals maps the positional arguments onto the config:
// URL, METHOD URL, or METHOD URL BODY.
func applyPositionals(cfg *Config, args []string) error {
	switch len(args) {
	case 0:
	case 1:
		cfg.TargetURL = strings.TrimSpace(args[0])
	case 2:
		cfg.Method = args[0]
		cfg.TargetURL = strings.TrimSpace(args[1])
	case 3:
		cfg.Method = args[0]
		cfg.TargetURL = strings.TrimSpace(args[1])
		cfg.Body = args[2]
		cfg.BodyFile = ""
	default:
		return fmt.Errorf("too many arguments: expected [METHOD] URL [BODY], got %d", len(args))
	}
	return nil
}
