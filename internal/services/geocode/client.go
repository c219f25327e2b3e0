// Package geocode proxies free-text location search to a Nominatim instance.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"venue-tagger/internal/cache"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "venue-tagger/1.0"

	// MinQueryLength is the shortest query forwarded upstream.
	MinQueryLength = 2
	resultLimit    = 5
	requestTimeout = 10 * time.Second
)

// ErrUpstream is returned when the geocoder cannot be reached or answers badly.
var ErrUpstream = errors.New("geocoder unavailable")

// Location is one suggestion returned to the client.
type Location struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	PlaceID     int64  `json:"place_id"`
}

type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) ([]byte, error)
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     Cache
	ttl       time.Duration

	// workTimeout bounds a lookup shared by concurrent identical queries.
	workTimeout time.Duration
	group       singleflight.Group
}

// NewClient creates a geocoder client. c may be nil.
func NewClient(baseURL, userAgent string, c Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if ttl <= 0 {
		ttl = cache.LocationTTL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		http:        &http.Client{Timeout: requestTimeout},
		cache:       c,
		ttl:         ttl,
		workTimeout: 2 * requestTimeout,
	}
}

// Search returns up to five suggestions for query. Queries shorter than
// MinQueryLength return an empty list without an upstream call.
func (c *Client) Search(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Location{}, nil
	}

	key := cache.LocationKey(query)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.workTimeout)
		defer cancel()
		return c.searchCached(workCtx, key, query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Location), nil
	}
}

func (c *Client) searchCached(ctx context.Context, key, query string) ([]Location, error) {
	if c.cache == nil {
		return c.fetch(ctx, query)
	}

	var (
		locations []Location
		fetched   bool
	)
	raw, err := c.cache.GetOrSet(ctx, key, c.ttl, func() (interface{}, error) {
		fetched = true
		l, err := c.fetch(ctx, query)
		locations = l
		return l, err
	})
	if err != nil {
		if fetched {
			return nil, err
		}
		log.Warn().Err(err).Str("query", query).Msg("Location cache unavailable, querying geocoder directly")
		return c.fetch(ctx, query)
	}
	if fetched {
		return locations, nil
	}

	if err := json.Unmarshal(raw, &locations); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Discarding corrupt cached locations")
		return c.fetch(ctx, query)
	}
	return locations, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]Location, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", fmt.Sprint(resultLimit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var locations []Location
	if err := json.NewDecoder(resp.Body).Decode(&locations); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if locations == nil {
		locations = []Location{}
	}

	log.Debug().
		Str("query", query).
		Int("results", len(locations)).
		Dur("duration", time.Since(start)).
		Msg("Geocoder search completed")

	return locations, nil
}
