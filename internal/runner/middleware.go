package runner

import (
	"context"
	"io"

	"github.com/torosent/quickfire/internal/metrics"
)

// ExchangeLogger receives one call per completed exchange.
// seq counts exchanges of the wrapped requester starting at 1.
type ExchangeLogger interface {
	LogExchange(seq int64, ex metrics.Exchange, err error)
}

// loggingRequester wraps a Requester with per-exchange logging.
// It belongs to a single worker, so seq needs no synchronization.
type loggingRequester struct {
	inner  Requester
	logger ExchangeLogger
	seq    int64
}

// WithLogging wraps a Requester to report every exchange to logger.
func WithLogging(req Requester, logger ExchangeLogger) Requester {
	if logger == nil {
		return req
	}
	return &loggingRequester{
		inner:  req,
		logger: logger,
	}
}

func (l *loggingRequester) Do(ctx context.Context) (metrics.Exchange, error) {
	ex, err := l.inner.Do(ctx)
	l.seq++
	l.logger.LogExchange(l.seq, ex, err)
	return ex, err
}

// Close releases the wrapped requester's resources, if it holds any.
func (l *loggingRequester) Close() error {
	if c, ok := l.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
