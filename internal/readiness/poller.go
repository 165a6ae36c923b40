// Package readiness blocks a verification run until the deployment's entry
// point answers a liveness probe, or a wait budget is exhausted.
package readiness

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Outcome is the result of one Wait invocation.
type Outcome struct {
	// Ready reports whether the endpoint answered 2xx within the budget.
	Ready bool

	// Elapsed is the time until the first successful probe, or the total
	// time waited when the budget ran out.
	Elapsed time.Duration
}

// Wait polls url with a bounded-timeout GET every interval until a 2xx
// response or until maxWait elapses. The per-request timeout is clamped
// strictly below the interval so probes never overlap.
func Wait(ctx context.Context, url string, maxWait, interval time.Duration) Outcome {
	start := time.Now()
	client := probeClient(interval)

	if probe(ctx, client, url) {
		return Outcome{Ready: true, Elapsed: time.Since(start)}
	}

	deadline := time.After(maxWait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Outcome{Elapsed: time.Since(start)}
		case <-deadline:
			return Outcome{Elapsed: time.Since(start)}
		case <-ticker.C:
			if probe(ctx, client, url) {
				return Outcome{Ready: true, Elapsed: time.Since(start)}
			}
		}
	}
}

// Probe issues a single bounded-timeout GET and reports whether the
// endpoint answered 2xx. Used for live-deployment detection.
func Probe(ctx context.Context, url string, timeout time.Duration) bool {
	return probe(ctx, &http.Client{Timeout: timeout}, url)
}

func probe(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// probeClient builds a client whose timeout stays strictly below interval.
func probeClient(interval time.Duration) *http.Client {
	timeout := interval * 4 / 5
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return &http.Client{Timeout: timeout}
}
