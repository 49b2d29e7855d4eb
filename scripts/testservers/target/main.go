// Command target is a local fasthttp server to point quickfire at while
// developing: fixed and delayed responses, arbitrary status codes and an echo.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/torosent/quickfire/internal/logging"
)

const maxDelay = 10 * time.Second

func main() {
	fs := pflag.NewFlagSet("target", pflag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:8080", "Listen address")
	verbose := fs.BoolP("verbose", "v", false, "Log every request")
	_ = fs.Parse(os.Args[1:])

	opts := logging.DefaultOptions()
	opts.Verbose = *verbose
	logger, closeLog := logging.New(opts)
	defer closeLog()

	server := &fasthttp.Server{
		Handler:      loggingMiddleware(logger, newRouter()),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Warnf("target server listening on %s", *listen)
	if err := server.ListenAndServe(*listen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRouter() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/":
			ctx.SetContentType("text/plain")
			ctx.SetBodyString("ok")
		case "/delay":
			handleDelay(ctx)
		case "/status":
			handleStatus(ctx)
		case "/echo":
			ctx.SetContentTypeBytes(ctx.Request.Header.ContentType())
			ctx.SetBody(ctx.PostBody())
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	}
}

// handleDelay answers after ?ms= milliseconds, capped at maxDelay.
func handleDelay(ctx *fasthttp.RequestCtx) {
	ms, err := strconv.Atoi(string(ctx.QueryArgs().Peek("ms")))
	if err != nil || ms < 0 {
		ctx.Error("ms must be a non-negative integer", fasthttp.StatusBadRequest)
		return
	}
	delay := time.Duration(ms) * time.Millisecond
	if delay > maxDelay {
		delay = maxDelay
	}
	time.Sleep(delay)
	ctx.SetBodyString("ok")
}

// handleStatus answers with the status given in ?code=.
func handleStatus(ctx *fasthttp.RequestCtx) {
	code, err := strconv.Atoi(string(ctx.QueryArgs().Peek("code")))
	if err != nil || code < 100 || code > 599 {
		ctx.Error("code must be an HTTP status", fasthttp.StatusBadRequest)
		return
	}
	ctx.SetStatusCode(code)
}

func loggingMiddleware(logger *zap.SugaredLogger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		logger.Debugw("request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start),
		)
	}
}
