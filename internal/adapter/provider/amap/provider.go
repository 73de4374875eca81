// Package amap fetches forward and reverse geocoding results from an
// Amap-style web service. Transport failures are retried on a fixed,
// context-cancellable delay; provider-reported "no result" is returned as
// nil without retrying.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

// Provider calls the external geocoding API.
type Provider struct {
	baseURL    string
	key        string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from GeocoderConfig.
func NewProvider(cfg config.GeocoderConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		key:        cfg.Key,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		log:        logger.With("adapter", "amap"),
	}
}

// Geocode resolves an address to a coordinate pair.
// Returns nil, nil when the provider reports no result or the response is
// malformed; returns an error only when the transport retry budget is
// exhausted.
func (p *Provider) Geocode(ctx context.Context, address string) (*domain.GeoPoint, error) {
	reqURL := fmt.Sprintf("%s/geocode/geo?key=%s&address=%s&output=JSON",
		p.baseURL, url.QueryEscape(p.key), url.QueryEscape(address))

	body, err := p.getWithRetry(ctx, reqURL, "geocode")
	if err != nil {
		return nil, fmt.Errorf("amap: geocode %q: %w", address, err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.log.WarnContext(ctx, "geocode response malformed", slog.String("error", err.Error()))
		return nil, nil
	}

	if resp.Status != statusOK {
		p.log.WarnContext(ctx, "geocode rejected by provider",
			slog.String("status", resp.Status), slog.String("info", resp.Info))
		return nil, nil
	}
	if len(resp.Geocodes) == 0 {
		p.log.DebugContext(ctx, "geocode returned no result", slog.String("address", address))
		return nil, nil
	}

	first := resp.Geocodes[0]
	point, ok := parseLocation(first.Location)
	if !ok {
		p.log.WarnContext(ctx, "geocode location malformed", slog.String("location", first.Location))
		return nil, nil
	}
	point.Address = first.FormattedAddress

	return point, nil
}

// ReverseGeocode resolves a coordinate pair to a formatted address.
// Returns "", nil when the provider has no result for the point.
func (p *Provider) ReverseGeocode(ctx context.Context, point *domain.GeoPoint) (string, error) {
	if point == nil {
		return "", nil
	}

	reqURL := fmt.Sprintf("%s/geocode/regeo?key=%s&location=%s,%s&output=JSON&extensions=base",
		p.baseURL, url.QueryEscape(p.key),
		formatCoord(point.Longitude), formatCoord(point.Latitude))

	body, err := p.getWithRetry(ctx, reqURL, "reverse geocode")
	if err != nil {
		return "", fmt.Errorf("amap: reverse geocode: %w", err)
	}

	var resp regeoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.log.WarnContext(ctx, "reverse geocode response malformed", slog.String("error", err.Error()))
		return "", nil
	}

	if resp.Status != statusOK {
		p.log.WarnContext(ctx, "reverse geocode rejected by provider",
			slog.String("status", resp.Status), slog.String("info", resp.Info))
		return "", nil
	}

	addr := resp.Regeocode.FormattedAddress
	if addr == "" || addr == "[]" {
		return "", nil
	}

	return addr, nil
}

// getWithRetry performs a GET, retrying transport errors and 5xx responses
// up to maxRetries extra attempts with a fixed delay. The wait respects
// context cancellation. Non-5xx HTTP statuses are not retried.
func (p *Provider) getWithRetry(ctx context.Context, reqURL, op string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			p.log.WarnContext(ctx, "geocoder retry",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.String("reason", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}

		body, retriable, err := p.getOnce(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !retriable {
			return nil, err
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// getOnce performs a single GET. retriable marks transport errors and 5xx.
func (p *Provider) getOnce(ctx context.Context, reqURL string) (body []byte, retriable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	return body, false, nil
}

// parseLocation splits a "lon,lat" pair.
func parseLocation(location string) (*domain.GeoPoint, bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return nil, false
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, false
	}

	return &domain.GeoPoint{Longitude: lon, Latitude: lat}, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
