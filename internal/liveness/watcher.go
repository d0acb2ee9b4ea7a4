// Package liveness polls the backend health endpoint and signals when
// the backend comes back after an outage.
package liveness

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/config"
)

// Watcher probes the health endpoint on an interval. It remembers the
// last outcome and fires the recover hook only on a failure to
// success transition, so a healthy backend never triggers it.
type Watcher struct {
	healthURL  string
	interval   time.Duration
	httpClient *http.Client
	onRecover  func(ctx context.Context)

	lastOk bool
}

func NewWatcher(backend config.Backend, conf config.Liveness, httpClient *http.Client, onRecover func(ctx context.Context)) (*Watcher, error) {
	baseURL, err := url.Parse(backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend base URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.PollInterval}
	}

	return &Watcher{
		healthURL:  baseURL.JoinPath(conf.HealthPath).String(),
		interval:   conf.PollInterval,
		httpClient: httpClient,
		onRecover:  onRecover,
		lastOk:     true,
	}, nil
}

// Run polls until the context is cancelled. It always returns nil so
// the caller can treat cancellation as a normal shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	c := time.Tick(w.interval)
	for {
		w.probe(ctx)

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	ok := w.check(ctx)

	if ok && !w.lastOk {
		slogctx.Info(ctx, "Backend is reachable again")
		if w.onRecover != nil {
			w.onRecover(ctx)
		}
	}

	w.lastOk = ok
}

// check reports whether the health endpoint answered at all. Any HTTP
// response counts as alive; only transport failures count as down.
func (w *Watcher) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		slogctx.Warn(ctx, "Health probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	return true
}
