package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/httpclient"
	"github.com/torosent/quickfire/internal/runner"
	"github.com/torosent/quickfire/internal/tracing"
)

func testConfig(target string) *config.Config {
	cfg := config.Defaults()
	cfg.TargetURL = target
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newTestFactory(t *testing.T, cfg *config.Config, tp *tracing.Provider) runner.RequesterFactory {
	t.Helper()
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("NewRequestBuilder() error = %v", err)
	}
	factory, err := newRequesterFactory(cfg, builder, tp, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("newRequesterFactory() error = %v", err)
	}
	return factory
}

func TestRequesterFactorySelectsEngine(t *testing.T) {
	tests := []struct {
		engine  config.Engine
		verbose bool
		check   func(runner.Requester) bool
	}{
		{config.EngineNetHTTP, false, func(r runner.Requester) bool { _, ok := r.(*httpRequester); return ok }},
		{config.EngineFastHTTP, false, func(r runner.Requester) bool { _, ok := r.(*fastHTTPRequester); return ok }},
		{config.EngineNetHTTP, true, func(r runner.Requester) bool {
			_, plain := r.(*httpRequester)
			_, closer := r.(io.Closer)
			return !plain && closer
		}},
	}

	for _, tt := range tests {
		cfg := testConfig("http://example.com")
		cfg.Engine = tt.engine
		cfg.Verbose = tt.verbose
		req, err := newTestFactory(t, cfg, nil)(0)
		if err != nil {
			t.Fatalf("factory(0) error = %v", err)
		}
		if !tt.check(req) {
			t.Errorf("engine %s verbose=%v built %T", tt.engine, tt.verbose, req)
		}
	}
}

func TestRequesterFactoryGivesEachWorkerItsOwnClient(t *testing.T) {
	factory := newTestFactory(t, testConfig("http://example.com"), nil)
	a, _ := factory(0)
	b, _ := factory(1)
	ra, rb := a.(*httpRequester), b.(*httpRequester)
	if ra.client == rb.client || ra.client.Transport == rb.client.Transport {
		t.Fatal("workers share an HTTP client")
	}
	if ra.helper.worker != 0 || rb.helper.worker != 1 {
		t.Errorf("worker indexes = %d, %d", ra.helper.worker, rb.helper.worker)
	}
}

func TestRequesterFactoryRejectsUnknownEngine(t *testing.T) {
	cfg := testConfig("http://example.com")
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("NewRequestBuilder() error = %v", err)
	}
	cfg.Engine = "curl"
	if _, err := newRequesterFactory(cfg, builder, nil, nil); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

// Both engines stop the clock only after the whole body has arrived.
func TestRequestersTimeTheFullResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(30 * time.Millisecond)
		_, _ = w.Write([]byte("tail of the payload"))
	}))
	defer srv.Close()

	for _, engine := range []config.Engine{config.EngineNetHTTP, config.EngineFastHTTP} {
		t.Run(string(engine), func(t *testing.T) {
			cfg := testConfig(srv.URL)
			cfg.Engine = engine
			req, err := newTestFactory(t, cfg, nil)(0)
			if err != nil {
				t.Fatalf("factory(0) error = %v", err)
			}
			defer req.(io.Closer).Close()

			ex, err := req.Do(context.Background())
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if ex.Elapsed < 30*time.Millisecond || ex.Elapsed > 2*time.Second {
				t.Errorf("elapsed = %s, want at least the 30ms body delay", ex.Elapsed)
			}
			if ex.Status != http.StatusOK {
				t.Errorf("status = %d, want 200", ex.Status)
			}
		})
	}
}

func TestRequestersReportServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	for _, engine := range []config.Engine{config.EngineNetHTTP, config.EngineFastHTTP} {
		t.Run(string(engine), func(t *testing.T) {
			cfg := testConfig(srv.URL)
			cfg.Engine = engine
			req, err := newTestFactory(t, cfg, nil)(0)
			if err != nil {
				t.Fatalf("factory(0) error = %v", err)
			}
			defer req.(io.Closer).Close()

			ex, err := req.Do(context.Background())
			if err != nil {
				t.Fatalf("Do() error = %v, want a 503 to be a completed exchange", err)
			}
			if ex.Status != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", ex.Status)
			}
		})
	}
}

func TestFastHTTPRequesterFailsOnClosedServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	cfg := testConfig(target)
	cfg.Engine = config.EngineFastHTTP
	req, err := newTestFactory(t, cfg, nil)(0)
	if err != nil {
		t.Fatalf("factory(0) error = %v", err)
	}
	defer req.(io.Closer).Close()

	if _, err := req.Do(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestHTTPRequesterBuildFailureIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Method = "POST"
	cfg.BodyFile = path
	req, err := newTestFactory(t, cfg, nil)(0)
	if err != nil {
		t.Fatalf("factory(0) error = %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	_, err = req.Do(context.Background())
	if !runner.IsFatal(err) {
		t.Fatalf("Do() error = %v, want fatal", err)
	}
}

func TestRequestersPropagateTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	exporter := tracetest.NewInMemoryExporter()
	sdk := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
	tp := tracing.NewProvider(sdk, true)

	for _, engine := range []config.Engine{config.EngineNetHTTP, config.EngineFastHTTP} {
		t.Run(string(engine), func(t *testing.T) {
			exporter.Reset()
			traceparent := make(chan string, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				traceparent <- r.Header.Get("Traceparent")
				w.WriteHeader(http.StatusAccepted)
			}))
			defer srv.Close()

			cfg := testConfig(srv.URL)
			cfg.Engine = engine
			req, err := newTestFactory(t, cfg, tp)(2)
			if err != nil {
				t.Fatalf("factory(2) error = %v", err)
			}
			defer req.(io.Closer).Close()

			ex, err := req.Do(context.Background())
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if ex.Status != http.StatusAccepted {
				t.Errorf("status = %d, want 202", ex.Status)
			}
			got := <-traceparent
			if len(got) != 55 {
				t.Errorf("traceparent = %q", got)
			}

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("got %d spans, want 1", len(spans))
			}
			if spans[0].Name != "HTTP GET" {
				t.Errorf("span name = %q", spans[0].Name)
			}
			if got[3:35] != spans[0].SpanContext.TraceID().String() {
				t.Errorf("traceparent %q does not carry span trace id", got)
			}
		})
	}
}
