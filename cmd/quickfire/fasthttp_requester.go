package main

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/torosent/quickfire/internal/metrics"
	"github.com/torosent/quickfire/internal/tracing"
)

// fastHTTPRequester implements runner.Requester on a per-worker fasthttp.Client.
// fasthttp has no context support; the timeout is enforced with DoTimeout.
type fastHTTPRequester struct {
	client  *fasthttp.Client
	headers http.Header
	body    []byte
	timeout time.Duration
	helper  baseRequesterHelper
}

func newFastHTTPClient(timeout time.Duration) *fasthttp.Client {
	return &fasthttp.Client{
		Name:                "quickfire",
		MaxConnsPerHost:     2,
		MaxIdleConnDuration: 90 * time.Second,
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
	}
}

// Do sends one request; the clock covers the full response, body included.
func (r *fastHTTPRequester) Do(ctx context.Context) (metrics.Exchange, error) {
	ctx, span := r.helper.startExchange(ctx)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.helper.target)
	req.Header.SetMethod(r.helper.method)
	for key, values := range r.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if len(r.body) > 0 {
		req.SetBodyRaw(r.body)
	}
	if r.helper.shouldPropagate() {
		tracing.InjectFastHTTPHeaders(ctx, &req.Header)
	}

	var err error
	start := time.Now()
	if r.timeout > 0 {
		err = r.client.DoTimeout(req, resp, r.timeout)
	} else {
		err = r.client.Do(req, resp)
	}
	elapsed := time.Since(start)
	if err != nil {
		tracing.EndSpan(span, err)
		return metrics.Exchange{}, err
	}

	status := resp.StatusCode()
	tracing.EndSpan(span, nil, tracing.StatusCode(status))
	return metrics.Exchange{Elapsed: elapsed, Status: status}, nil
}

// Close drops the worker's idle connections.
func (r *fastHTTPRequester) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
