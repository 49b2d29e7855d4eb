package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/torosent/quickfire/internal/httpclient"
	"github.com/torosent/quickfire/internal/metrics"
	"github.com/torosent/quickfire/internal/runner"
	"github.com/torosent/quickfire/internal/tracing"
)

// httpRequester implements runner.Requester on net/http.
// Each worker owns one, together with its own client and connection pool.
type httpRequester struct {
	client  *http.Client
	builder *httpclient.RequestBuilder
	helper  baseRequesterHelper
}

// Do sends one request. The clock covers sending the request and reading the
// whole response, matching what fasthttp's Do does; building the request is
// not timed. Any status counts as a success and is reported as-is.
func (r *httpRequester) Do(ctx context.Context) (metrics.Exchange, error) {
	ctx, span := r.helper.startExchange(ctx)

	req, err := r.builder.Build(ctx)
	if err != nil {
		tracing.EndSpan(span, err)
		return metrics.Exchange{}, runner.Fatal(fmt.Errorf("build request: %w", err))
	}
	if r.helper.shouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		tracing.EndSpan(span, err)
		return metrics.Exchange{}, err
	}
	_, drainErr := io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)
	_ = resp.Body.Close()

	if drainErr != nil {
		err = fmt.Errorf("read response body: %w", drainErr)
		tracing.EndSpan(span, err, tracing.StatusCode(resp.StatusCode))
		return metrics.Exchange{}, err
	}

	tracing.EndSpan(span, nil, tracing.StatusCode(resp.StatusCode))
	return metrics.Exchange{Elapsed: elapsed, Status: resp.StatusCode}, nil
}

// Close drops the worker's idle connections.
func (r *httpRequester) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
