// Package gis proxies the state DOT ArcGIS scenic-highways layer. The
// upstream is read-only and slow, so responses are cached with a TTL.
package gis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const cacheKey = "gis:scenic-highways"

// outFields are the attribute columns requested from the feature layer.
var outFields = []string{
	"SCENEHWY",
	"DESCRIPT",
	"DESIG_DATE",
	"DISTRICT",
	"COUNTY",
	"BEGIN_POST",
	"END_POST",
	"Shape__Length",
}

// Cache is a TTL'd byte cache; Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client fetches the scenic-highways GeoJSON from the ArcGIS feature
// service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
	log        zerolog.Logger
}

func NewClient(baseURL string, cache Cache, ttl time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		ttl:        ttl,
		log:        log,
	}
}

// ScenicHighways returns the official scenic-highways feature collection,
// from cache when possible.
func (c *Client) ScenicHighways(ctx context.Context) ([]byte, error) {
	if cached, err := c.cache.Get(ctx, cacheKey); err != nil {
		// Cache trouble is not fatal; fall through to the upstream.
		c.log.Warn().Err(err).Msg("gis cache read")
	} else if cached != nil {
		return cached, nil
	}

	q := url.Values{}
	q.Set("where", "1=1")
	q.Set("outFields", strings.Join(outFields, ","))
	q.Set("outSR", "4326")
	q.Set("f", "pgeojson")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gis request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gis fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gis upstream returned %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gis read: %w", err)
	}

	if err := c.cache.Set(ctx, cacheKey, data, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("gis cache write")
	}
	return data, nil
}

// Handler exposes the proxy over HTTP.
type Handler struct {
	client *Client
	log    zerolog.Logger
}

func NewHandler(client *Client, log zerolog.Logger) *Handler {
	return &Handler{client: client, log: log}
}

// ScenicHighways serves GET /api/scenic-highways. Upstream failure is a
// 502, not a 500: the fault is the collaborator's.
func (h *Handler) ScenicHighways(w http.ResponseWriter, r *http.Request) {
	data, err := h.client.ScenicHighways(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("scenic highways fetch")
		http.Error(w, `{"error":"scenic highways unavailable"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}
