package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/httpclient"
	"github.com/torosent/quickfire/internal/runner"
	"github.com/torosent/quickfire/internal/tracing"
)

// newRequesterFactory returns the constructor the runner calls once per
// worker. Everything shared between workers is read-only: the builder, the
// body bytes and the tracing provider.
func newRequesterFactory(cfg *config.Config, builder *httpclient.RequestBuilder, tp *tracing.Provider, logger *zap.SugaredLogger) (runner.RequesterFactory, error) {
	var body []byte
	switch cfg.Engine {
	case config.EngineNetHTTP, "":
	case config.EngineFastHTTP:
		var err error
		body, err = httpclient.ReadBody(builder.Body())
		if err != nil {
			return nil, fmt.Errorf("load request body: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported engine %q", cfg.Engine)
	}

	return func(worker int) (runner.Requester, error) {
		helper := baseRequesterHelper{
			worker:  worker,
			method:  builder.Method(),
			target:  builder.Target(),
			tracing: tp,
		}

		var req runner.Requester
		if cfg.Engine == config.EngineFastHTTP {
			req = &fastHTTPRequester{
				client:  newFastHTTPClient(cfg.Timeout),
				headers: builder.Header(),
				body:    body,
				timeout: cfg.Timeout,
				helper:  helper,
			}
		} else {
			req = &httpRequester{
				client:  httpclient.NewClient(cfg.Timeout),
				builder: builder,
				helper:  helper,
			}
		}

		if cfg.Verbose && logger != nil {
			req = runner.WithLogging(req, &zapExchangeLogger{logger: logger, worker: worker})
		}
		return req, nil
	}, nil
}
