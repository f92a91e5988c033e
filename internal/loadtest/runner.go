// Package loadtest drives concurrent GraphQL traffic against a running server
// and summarises the observed latencies.
package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rl1809/graphql-bench/internal/logging"
)

type Options struct {
	URL         string
	Connections int
	Duration    time.Duration
	Query       string
	Client      *http.Client
	Logger      *slog.Logger
}

type Result struct {
	Requests  int64
	Non2xx    int64
	Errors    int64
	Bytes     int64
	Elapsed   time.Duration
	Latencies []time.Duration
}

// Run keeps opts.Connections workers posting opts.Query until the duration
// elapses or ctx is cancelled, whichever comes first.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.URL == "" {
		return nil, errors.New("url is required")
	}
	if opts.Connections <= 0 {
		return nil, fmt.Errorf("connections must be positive, got %d", opts.Connections)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        opts.Connections,
				MaxIdleConnsPerHost: opts.Connections,
			},
		}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	body, err := json.Marshal(map[string]any{
		"query":     opts.Query,
		"variables": map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	var (
		res      Result
		mu       sync.Mutex
		requests atomic.Int64
		non2xx   atomic.Int64
		failures atomic.Int64
		received atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	startedAt := time.Now()

	for i := 0; i < opts.Connections; i++ {
		g.Go(func() error {
			var local []time.Duration
			for gctx.Err() == nil {
				start := time.Now()
				n, status, err := send(gctx, opts.Client, opts.URL, body)
				if gctx.Err() != nil {
					break
				}
				requests.Add(1)
				received.Add(n)
				switch {
				case err != nil:
					failures.Add(1)
					opts.Logger.Debug("request failed", "error", err)
					continue
				case status < 200 || status > 299:
					non2xx.Add(1)
				}
				local = append(local, time.Since(start))
			}

			mu.Lock()
			res.Latencies = append(res.Latencies, local...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = time.Since(startedAt)
	res.Requests = requests.Load()
	res.Non2xx = non2xx.Load()
	res.Errors = failures.Load()
	res.Bytes = received.Load()
	return &res, nil
}

func send(ctx context.Context, client *http.Client, url string, body []byte) (int64, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	return n, resp.StatusCode, err
}
