// Package api validates the public HTTP contract of the product catalog: a
// fixed sequence of requests against the gateway asserting status codes and
// the decoded shape of response bodies.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/stackcheck/stackcheck/internal/checks"
)

// SuiteName identifies this suite in the registry and reports.
const SuiteName = "api-contract"

// rejected is the contract for malformed input. Strictly 400: a 500 means
// the service crashed rather than rejected.
var rejected = Exactly(http.StatusBadRequest)

const burstName = "Burst Test Product"

// Options configures the API-contract suite.
type Options struct {
	// GatewayURL is the public entry point base URL.
	GatewayURL string

	// BurstSize is the number of sequential creations in the burst check.
	BurstSize int

	// RequestTimeout bounds every individual request.
	RequestTimeout time.Duration
}

// New builds the API-contract suite.
func New(opts Options) checks.Suite {
	c := newClient(opts.GatewayURL, opts.RequestTimeout)

	cs := []checks.Check{
		{Name: "create-valid-product", Run: func(ctx context.Context) checks.Result {
			return checkCreateValid(ctx, c)
		}},
		{Name: "create-empty-name", Run: func(ctx context.Context) checks.Result {
			return checkRejected(ctx, c, map[string]any{"name": "", "price": 10.00})
		}},
		{Name: "create-missing-name", Run: func(ctx context.Context) checks.Result {
			return checkRejected(ctx, c, map[string]any{"price": 10.00})
		}},
		{Name: "create-negative-price", Run: func(ctx context.Context) checks.Result {
			return checkRejected(ctx, c, map[string]any{"name": "Test Product", "price": -5.00})
		}},
		{Name: "create-wrong-typed-price", Run: func(ctx context.Context) checks.Result {
			return checkRejected(ctx, c, map[string]any{"name": "Test Product", "price": "not-a-number"})
		}},
		{Name: "list-products", Run: func(ctx context.Context) checks.Result {
			return checkListing(ctx, c)
		}},
		{Name: "burst-create", Run: func(ctx context.Context) checks.Result {
			return checkBurst(ctx, c, opts.BurstSize)
		}},
	}

	return checks.Suite{Name: SuiteName, Checks: cs}
}

func checkCreateValid(ctx context.Context, c *client) checks.Result {
	status, body, err := c.createProduct(ctx, map[string]any{"name": "Test Product", "price": 99.99})
	if err != nil {
		return checks.Fail("", "request failed: %v", err)
	}
	if status != http.StatusCreated {
		return checks.Fail("", "expected 201, got %d: %s", status, truncate(body))
	}

	p, err := decodeProduct(body)
	if err != nil {
		return checks.Fail("", "%v", err)
	}
	if p.Identifier() == "" {
		return checks.Fail("", "created product has no identifier: %s", truncate(body))
	}
	if p.Name != "Test Product" {
		return checks.Fail("", "expected name %q echoed, got %q", "Test Product", p.Name)
	}
	return checks.Pass("", "created product %s", p.Identifier())
}

func checkRejected(ctx context.Context, c *client, payload map[string]any) checks.Result {
	status, body, err := c.createProduct(ctx, payload)
	if err != nil {
		return checks.Fail("", "request failed: %v", err)
	}
	if !rejected.Allows(status) {
		return checks.Fail("", "expected %s, got %d: %s", rejected, status, truncate(body))
	}
	return checks.Pass("", "rejected with %d", status)
}

func checkListing(ctx context.Context, c *client) checks.Result {
	status, body, err := c.listProducts(ctx)
	if err != nil {
		return checks.Fail("", "request failed: %v", err)
	}
	if status != http.StatusOK {
		return checks.Fail("", "expected 200, got %d", status)
	}

	products, err := decodeListing(body)
	if err != nil {
		return checks.Fail("", "%v", err)
	}
	return checks.Pass("", "listing returned %d products", len(products))
}

func checkBurst(ctx context.Context, c *client, size int) checks.Result {
	for i := 0; i < size; i++ {
		status, body, err := c.createProduct(ctx, map[string]any{"name": burstName, "price": 1.00 + float64(i)})
		if err != nil {
			return checks.Fail("", "burst request %d/%d failed: %v", i+1, size, err)
		}
		if status != http.StatusCreated {
			return checks.Fail("", "burst request %d/%d: expected 201, got %d: %s", i+1, size, status, truncate(body))
		}
	}

	status, body, err := c.listProducts(ctx)
	if err != nil {
		return checks.Fail("", "listing after burst failed: %v", err)
	}
	if status != http.StatusOK {
		return checks.Fail("", "listing after burst: expected 200, got %d", status)
	}

	products, err := decodeListing(body)
	if err != nil {
		return checks.Fail("", "%v", err)
	}

	count := 0
	for _, p := range products {
		if p.Name == burstName {
			count++
		}
	}
	if count < size {
		return checks.Fail("", "expected >= %d %q entries in listing, found %d", size, burstName, count)
	}
	return checks.Pass("", "%d sequential creations all visible in listing", size)
}

func truncate(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "...(truncated)"
	}
	return s
}
