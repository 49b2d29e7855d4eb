package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Engine selects the HTTP client implementation each worker owns.
type Engine string

const (
	EngineNetHTTP  Engine = "nethttp"
	EngineFastHTTP Engine = "fasthttp"
)

// Format selects how the final report is rendered on stdout.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrNotDivisible reports a request total that cannot be split evenly across workers.
	ErrNotDivisible = errors.New("requests not divisible by concurrency")
	// ErrUnsupportedMethod reports an HTTP method the executors cannot send.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// supportedMethods lists the verbs accepted by both client engines.
var supportedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodTrace,
}

type Config struct {
	TargetURL   string            `mapstructure:"target"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	Concurrency int               `mapstructure:"concurrency"`
	Total       int               `mapstructure:"requests"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Verbose     bool              `mapstructure:"verbose"`
	Engine      Engine            `mapstructure:"engine"`
	Format      Format            `mapstructure:"format"`
	LogFile     string            `mapstructure:"log_file"`
	ConfigFile  string            `mapstructure:"-"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

// TracingConfig configures OpenTelemetry export of per-exchange spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector address; empty disables tracing
	Protocol    string  `mapstructure:"protocol"`     // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"` // defaults to OTEL_SERVICE_NAME, then "quickfire"
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0 - 1.0
	Insecure    bool    `mapstructure:"insecure"`     // plaintext connection to the collector
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled()
}

// IsSupportedMethod reports whether method (any case) is one quickfire can send.
func IsSupportedMethod(method string) bool {
	method = strings.ToUpper(strings.TrimSpace(method))
	for _, m := range supportedMethods {
		if m == method {
			return true
		}
	}
	return false
}

type ValidationError struct {
	issues []string
	causes []error
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Unwrap exposes the typed causes so callers can match ErrNotDivisible and
// ErrUnsupportedMethod with errors.Is.
func (e ValidationError) Unwrap() []error {
	return e.causes
}

func (c Config) Validate() error {
	var issues []string
	var causes []error

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "url is required (use --help for usage information)")
	} else if u, err := url.Parse(target); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		issues = append(issues, fmt.Sprintf("url %q must be an absolute http or https URL", target))
	}

	if !IsSupportedMethod(c.Method) {
		issues = append(issues, fmt.Sprintf("method %q is not supported (supported: %s)", c.Method, strings.Join(supportedMethods, ", ")))
		causes = append(causes, ErrUnsupportedMethod)
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Total < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.Concurrency >= 1 && c.Total >= 1 && c.Total%c.Concurrency != 0 {
		issues = append(issues, fmt.Sprintf("requests (%d) must be a multiple of concurrency (%d)", c.Total, c.Concurrency))
		causes = append(causes, ErrNotDivisible)
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Body != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}

	switch c.Engine {
	case "", EngineNetHTTP, EngineFastHTTP:
	default:
		issues = append(issues, fmt.Sprintf("engine must be 'nethttp' or 'fasthttp', got %q", c.Engine))
	}

	switch c.Format {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		issues = append(issues, fmt.Sprintf("format must be 'text', 'json' or 'yaml', got %q", c.Format))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues, causes: causes}
	}
	return nil
}

// Warnings returns non-fatal advisories about the configuration.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("high concurrency configured (%d workers); ensure you have authorization to test the target system", c.Concurrency))
	}
	if c.Timeout == 0 {
		warnings = append(warnings, "timeout disabled; a stalled server will stall its worker indefinitely")
	}
	return warnings
}

func validateTracingConfig(t TracingConfig) []string {
	if !t.Enabled() {
		return nil
	}
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
