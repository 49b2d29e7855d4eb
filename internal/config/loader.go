package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

var (
	// ErrHelpRequested is returned when the user requests help via --help flag.
	ErrHelpRequested = errors.New("help requested")
	// ErrVersionRequested is returned when the user passes --version.
	ErrVersionRequested = errors.New("version requested")
	// ErrMissingURL is returned when neither an argument nor a config file names a target.
	ErrMissingURL = errors.New("url is required; usage: " + usage)
)

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Defaults returns the configuration used before any file or flag is applied.
func Defaults() *Config {
	return &Config{
		Method:      http.MethodGet,
		Headers:     map[string]string{},
		Concurrency: 1,
		Total:       1,
		Timeout:     30 * time.Second,
		Engine:      EngineNetHTTP,
		Format:      FormatText,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Precedence, lowest first: defaults, config file, flags, positional arguments.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if wantsVersion, err := flagSet.GetBool("version"); err == nil && wantsVersion {
		return nil, ErrVersionRequested
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		return nil, ErrMissingURL
	}

	positional := flagSet.Args()
	if len(positional) == 3 && flagSet.Changed("body-file") {
		return nil, errors.New("body argument and --body-file are mutually exclusive")
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Defaults()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if err := applyPositionals(cfg, positional); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)

	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies a config file's settings on top of cfg.
// Every malformed key is reported, not just the first.
func applyConfigSettings(cfg *Config, raw map[string]interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	s := settings(raw)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	method := cfg.Method
	var engine, format string
	errs := []error{
		s.setString(&cfg.TargetURL, "target", "url"),
		s.setString(&method, "method"),
		s.setString(&cfg.Body, "body"),
		s.setString(&cfg.BodyFile, "body_file", "bodyfile"),
		s.setInt(&cfg.Concurrency, "concurrency"),
		s.setInt(&cfg.Total, "requests", "total"),
		s.setDuration(&cfg.Timeout, "timeout"),
		s.setBool(&cfg.Verbose, "verbose"),
		s.setString(&engine, "engine"),
		s.setString(&format, "format"),
		s.setString(&cfg.LogFile, "log_file", "logfile"),
		s.mergeHeaders(cfg.Headers, "headers"),
		applyTracingSettings(&cfg.Tracing, s),
	}
	if strings.TrimSpace(method) != "" {
		cfg.Method = method
	}
	if engine != "" {
		cfg.Engine = Engine(strings.ToLower(strings.TrimSpace(engine)))
	}
	if format != "" {
		cfg.Format = Format(strings.ToLower(strings.TrimSpace(format)))
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	return errors.Join(errs...)
}

func applyTracingSettings(t *TracingConfig, s settings) error {
	table, err := s.section("tracing")
	if err != nil || table == nil {
		return err
	}
	errs := []error{
		table.setString(&t.Endpoint, "endpoint"),
		table.setString(&t.Protocol, "protocol"),
		table.setString(&t.ServiceName, "service_name", "servicename"),
		table.setFloat(&t.SampleRate, "sample_rate", "samplerate"),
		table.setBool(&t.Insecure, "insecure"),
	}
	t.Endpoint = strings.TrimSpace(t.Endpoint)
	t.Protocol = strings.ToLower(strings.TrimSpace(t.Protocol))
	t.ServiceName = strings.TrimSpace(t.ServiceName)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}
