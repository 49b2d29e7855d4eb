package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/torosent/quickfire/internal/metrics"
)

// zapExchangeLogger reports the exchanges of one worker at debug level.
type zapExchangeLogger struct {
	logger *zap.SugaredLogger
	worker int
}

func (l *zapExchangeLogger) LogExchange(seq int64, ex metrics.Exchange, err error) {
	if err != nil {
		l.logger.Debugw("exchange failed",
			"worker", l.worker,
			"seq", seq,
			"error", metrics.ErrorLabel(err),
			"cause", err.Error(),
		)
		return
	}
	l.logger.Debugw("exchange",
		"worker", l.worker,
		"seq", seq,
		"status", ex.Status,
		"elapsed_ms", float64(ex.Elapsed)/float64(time.Millisecond),
	)
}
