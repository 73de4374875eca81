package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Geocoder.BaseURL == "" {
		return fmt.Errorf("geocoder.base_url must not be empty")
	}
	if c.Geocoder.MaxRetries < 0 {
		return fmt.Errorf("geocoder.max_retries must be >= 0 (got %d)", c.Geocoder.MaxRetries)
	}

	if err := c.Matching.validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	if c.Worker.Count <= 0 {
		return fmt.Errorf("worker.count must be > 0 (got %d)", c.Worker.Count)
	}

	return nil
}

func (m *MatchingConfig) validate() error {
	for name, w := range map[string]float64{
		"category_weight": m.CategoryWeight,
		"tag_weight":      m.TagWeight,
		"time_weight":     m.TimeWeight,
		"location_weight": m.LocationWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be >= 0 (got %v)", name, w)
		}
	}

	if m.TimeCloseWindow <= 0 || m.TimeHorizon <= m.TimeCloseWindow {
		return fmt.Errorf("time windows must satisfy 0 < close_window < horizon (got %v, %v)",
			m.TimeCloseWindow, m.TimeHorizon)
	}
	if m.LocationCloseRadius <= 0 || m.LocationMaxRadius <= m.LocationCloseRadius {
		return fmt.Errorf("location radii must satisfy 0 < close_radius < max_radius (got %v, %v)",
			m.LocationCloseRadius, m.LocationMaxRadius)
	}
	if m.TopK <= 0 {
		return fmt.Errorf("top_k must be > 0 (got %d)", m.TopK)
	}
	if m.CandidateLimit <= 0 {
		return fmt.Errorf("candidate_limit must be > 0 (got %d)", m.CandidateLimit)
	}

	return nil
}
