package amap

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	return NewProvider(config.GeocoderConfig{
		BaseURL:        baseURL,
		Key:            "test-key",
		RequestTimeout: 2 * time.Second,
		MaxRetries:     2,
		RetryDelay:     5 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "library north gate" {
			t.Errorf("address query = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query = %q", got)
		}
		w.Write([]byte(`{
			"status": "1",
			"geocodes": [{"location": "116.397428,39.909230", "formatted_address": "Library North Gate"}]
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	point, err := p.Geocode(context.Background(), "library north gate")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if point == nil {
		t.Fatal("Geocode() = nil, want point")
	}
	if point.Longitude != 116.397428 || point.Latitude != 39.909230 {
		t.Errorf("Geocode() = (%v, %v)", point.Longitude, point.Latitude)
	}
	if point.Address != "Library North Gate" {
		t.Errorf("Address = %q", point.Address)
	}
}

func TestGeocode_NoResult(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status": "1", "geocodes": []}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	point, err := p.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if point != nil {
		t.Errorf("Geocode() = %+v, want nil", point)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1 (no retry on empty result)", got)
	}
}

func TestGeocode_ProviderError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status": "0", "info": "INVALID_USER_KEY"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	point, err := p.Geocode(context.Background(), "anywhere")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if point != nil {
		t.Errorf("Geocode() = %+v, want nil", point)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1 (no retry on status 0)", got)
	}
}

func TestGeocode_RetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{
			"status": "1",
			"geocodes": [{"location": "121.473700,31.230400", "formatted_address": "Somewhere"}]
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	point, err := p.Geocode(context.Background(), "stadium east entrance")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if point == nil {
		t.Fatal("Geocode() = nil, want point after retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("provider called %d times, want 3", got)
	}
}

func TestGeocode_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	_, err := p.Geocode(context.Background(), "anywhere")
	if err == nil {
		t.Fatal("Geocode() error = nil, want retries exhausted error")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("provider called %d times, want 3 (1 initial + 2 retries)", got)
	}
}

func TestGeocode_ContextCancelledDuringRetryWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	p.retryDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Geocode(ctx, "anywhere")
	if err == nil {
		t.Fatal("Geocode() error = nil, want context error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Geocode() blocked for %v, want prompt cancellation", elapsed)
	}
}

func TestGeocode_MalformedLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "1",
			"geocodes": [{"location": "not-a-pair", "formatted_address": "x"}]
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	point, err := p.Geocode(context.Background(), "anywhere")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if point != nil {
		t.Errorf("Geocode() = %+v, want nil for malformed location", point)
	}
}

func TestReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("location"); got != "116.397428,39.909230" {
			t.Errorf("location query = %q", got)
		}
		w.Write([]byte(`{"status": "1", "regeocode": {"formatted_address": "Main Quad"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	addr, err := p.ReverseGeocode(context.Background(), &domain.GeoPoint{
		Longitude: 116.397428,
		Latitude:  39.909230,
	})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if addr != "Main Quad" {
		t.Errorf("ReverseGeocode() = %q", addr)
	}
}

func TestReverseGeocode_NilPoint(t *testing.T) {
	p := newTestProvider(t, "http://unreachable.invalid")

	addr, err := p.ReverseGeocode(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if addr != "" {
		t.Errorf("ReverseGeocode() = %q, want empty", addr)
	}
}

func TestReverseGeocode_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "1", "regeocode": {"formatted_address": ""}}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	addr, err := p.ReverseGeocode(context.Background(), &domain.GeoPoint{Longitude: 1, Latitude: 1})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if addr != "" {
		t.Errorf("ReverseGeocode() = %q, want empty", addr)
	}
}
