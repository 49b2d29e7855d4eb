// Package httpclient builds the benchmark request and the per-worker
// net/http client that sends it.
//
// # Request Building
//
// Use [NewRequestBuilder] to validate the method, URL, headers and body once:
//
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// Every call to Build returns a fresh request with its own body reader, so a
// builder can be shared by all workers.
//
// # HTTP Client
//
// [NewClient] creates one client per worker with keep-alive enabled:
//
//	client := httpclient.NewClient(30 * time.Second)
//	resp, err := client.Do(req)
package httpclient
