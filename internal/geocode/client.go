// Package geocode resolves free-text addresses to coordinates through the
// Yandex Geocoder HTTP API.
//
// A Client makes exactly one request per Resolve call, bounded by a fixed
// timeout, and never retries. Every failure maps onto one of three domain
// errors: ErrAddressNotFound, ErrGeocoderUnavailable, ErrGeocoderConfig.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/git21git/travelplanner/internal/domain"
)

const (
	// DefaultBaseURL is the public Yandex Geocoder endpoint.
	DefaultBaseURL = "https://geocode-maps.yandex.ru/1.x/"
	// DefaultTimeout bounds a single geocoding request.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a Yandex Geocoder client. It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
	metrics *metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (tests use this to
// point at an httptest server with its own transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New validates cfg and returns a Client. A missing API key is a
// configuration error and no request will ever be attempted.
// reg may be nil, in which case metrics are not registered anywhere.
func New(cfg Config, log *slog.Logger, reg prometheus.Registerer, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("geocode.New: %w: api key is not set", domain.ErrGeocoderConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("geocode.New: %w: base url: %v", domain.ErrGeocoderConfig, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		log:     log,
		metrics: newMetrics(reg),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve looks up address and returns the best match's coordinates.
func (c *Client) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	start := time.Now()
	coords, err := c.resolve(ctx, address)
	c.metrics.observe(outcomeOf(err), time.Since(start))
	if err != nil {
		c.log.WarnContext(ctx, "geocode failed", "address", address, "error", err)
		return domain.Coordinates{}, err
	}
	c.log.DebugContext(ctx, "geocode resolved", "address", address, "lat", coords.Lat, "lng", coords.Lng)
	return coords, nil
}

func (c *Client) resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(address), nil)
	if err != nil {
		return domain.Coordinates{}, unavailable("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Coordinates{}, unavailable("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Coordinates{}, unavailable("response", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body yandexResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return domain.Coordinates{}, unavailable("decode", err)
	}
	return body.bestMatch(address)
}

func (c *Client) requestURL(address string) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("geocode", address)
	q.Set("format", "json")
	q.Set("results", "1")

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

// yandexResponse mirrors the subset of the Yandex Geocoder JSON we read.
// Pointers distinguish a missing node (malformed) from an empty one.
type yandexResponse struct {
	Response *struct {
		GeoObjectCollection *struct {
			FeatureMember *[]struct {
				GeoObject struct {
					Point struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

func (r yandexResponse) bestMatch(address string) (domain.Coordinates, error) {
	if r.Response == nil || r.Response.GeoObjectCollection == nil || r.Response.GeoObjectCollection.FeatureMember == nil {
		return domain.Coordinates{}, unavailable("decode", errors.New("response has no featureMember list"))
	}
	members := *r.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrAddressNotFound, address)
	}
	return parsePos(members[0].GeoObject.Point.Pos)
}

// parsePos parses a Yandex "pos" value, which is "<lng> <lat>".
func parsePos(pos string) (domain.Coordinates, error) {
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return domain.Coordinates{}, unavailable("decode", fmt.Errorf("malformed pos %q", pos))
	}
	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return domain.Coordinates{}, unavailable("decode", fmt.Errorf("longitude: %w", err))
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return domain.Coordinates{}, unavailable("decode", fmt.Errorf("latitude: %w", err))
	}
	// Negated so NaN, which fails every comparison, is rejected too.
	if !(lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180) {
		return domain.Coordinates{}, unavailable("decode", fmt.Errorf("coordinates out of range %q", pos))
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}

func unavailable(stage string, cause error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrGeocoderUnavailable, stage, cause)
}
