// Package search is the HTTP client for the semantic product search
// backend. The backend is an unreliable collaborator: timeouts, non-200
// responses, and malformed JSON all degrade to zero results with a warn
// log, never to a fatal error.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// DefaultCollection is the backend collection queried when none is given.
const DefaultCollection = "SupermarketProducts3"

const kbBatchSize = 100

// Client talks to the search backend over HTTP.
type Client struct {
	baseURL           string
	defaultCollection string
	httpClient        *http.Client
}

// NewClient creates a Client. timeout defaults to 30 seconds and the
// collection to DefaultCollection when unset.
func NewClient(baseURL, defaultCollection string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if defaultCollection == "" {
		defaultCollection = DefaultCollection
	}
	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		defaultCollection: defaultCollection,
		httpClient:        &http.Client{Timeout: timeout},
	}
}

// DefaultCollectionName returns the configured default collection.
func (c *Client) DefaultCollectionName() string { return c.defaultCollection }

// Search runs a semantic query and returns matching products, or an empty
// slice on any failure.
func (c *Client) Search(ctx context.Context, term, collection string, limit int) []schema.Product {
	if collection == "" {
		collection = c.defaultCollection
	}
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{}
	q.Set("query", term)
	q.Set("collection", collection)
	q.Set("limit", strconv.Itoa(limit))

	var products []schema.Product
	if !c.getJSON(ctx, "/search", q, &products) {
		return nil
	}
	slog.Debug("search: results", "term", term, "count", len(products))
	return products
}

// Products fetches one raw page from a collection.
func (c *Client) Products(ctx context.Context, collection string, offset, limit int) []schema.Product {
	if collection == "" {
		collection = c.defaultCollection
	}

	q := url.Values{}
	q.Set("collection", collection)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var products []schema.Product
	if !c.getJSON(ctx, "/chatbot/products", q, &products) {
		return nil
	}
	return products
}

// Collections lists the backend's collections, falling back to the
// default collection name when the call fails or returns nothing.
func (c *Client) Collections(ctx context.Context) []string {
	var body struct {
		Collections []string `json:"collections"`
	}
	if !c.getJSON(ctx, "/chatbot/collections", nil, &body) || len(body.Collections) == 0 {
		return []string{c.defaultCollection}
	}
	return body.Collections
}

// KnowledgeBase pages through a collection in batches until limit products
// are collected or the backend runs out. Used to give the model a product
// overview when semantic search comes back thin.
func (c *Client) KnowledgeBase(ctx context.Context, collection string, limit int) []schema.Product {
	if limit <= 0 {
		limit = kbBatchSize
	}

	var all []schema.Product
	offset := 0
	for len(all) < limit {
		want := limit - len(all)
		if want > kbBatchSize {
			want = kbBatchSize
		}
		batch := c.Products(ctx, collection, offset, want)
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		offset += kbBatchSize
		if len(batch) < want {
			break
		}
	}
	slog.Debug("search: knowledge base fetched", "count", len(all))
	return all
}

// getJSON issues a GET and decodes the JSON body into dst. Returns false
// on any transport, status, or decode failure.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) bool {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		slog.Warn("search: build request failed", "path", path, "err", err)
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("search: request failed", "path", path, "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("search: unexpected status", "path", path, "status", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		slog.Warn("search: malformed response", "path", path, "err", fmt.Errorf("decode: %w", err))
		return false
	}
	return true
}
