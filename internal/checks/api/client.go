package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Product is the typed shape of a catalog entry in API responses. The
// identifier surfaces as "id" or, for document-store backends, "_id".
type Product struct {
	ID    string  `json:"id"`
	DocID string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Identifier returns whichever identifier field the response carried.
func (p Product) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.DocID
}

// listEnvelope tolerates listing responses that wrap the array.
type listEnvelope struct {
	Products []Product `json:"products"`
	Data     []Product `json:"data"`
}

// client issues the fixed request sequence of the API-contract suite.
type client struct {
	base string
	http *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// createProduct POSTs a payload to the products endpoint and returns the
// status code and raw body.
func (c *client) createProduct(ctx context.Context, payload map[string]any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/products", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// listProducts GETs the products listing.
func (c *client) listProducts(ctx context.Context) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/products", nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

func (c *client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// decodeProduct decodes a creation response into a typed Product.
func decodeProduct(body []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

// decodeListing decodes a listing response, accepting either a bare array
// or a wrapping envelope.
func decodeListing(body []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(body, &products); err == nil {
		return products, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if env.Products != nil {
		return env.Products, nil
	}
	return env.Data, nil
}
