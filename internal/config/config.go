package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Matching MatchingConfig `yaml:"matching"`
	Rabbit   RabbitConfig   `yaml:"rabbit"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds bearer-token verification settings. Tokens are issued by
// the external auth service; this backend only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"campusfind"`
}

// GeocoderConfig holds settings for the external geocoding provider.
type GeocoderConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"GEOCODER_BASE_URL"        env-default:"https://restapi.amap.com/v3"`
	Key            string        `yaml:"key"             env:"GEOCODER_KEY"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GEOCODER_REQUEST_TIMEOUT" env-default:"5s"`
	MaxRetries     int           `yaml:"max_retries"     env:"GEOCODER_MAX_RETRIES"     env-default:"2"`
	RetryDelay     time.Duration `yaml:"retry_delay"     env:"GEOCODER_RETRY_DELAY"     env-default:"500ms"`
}

// MatchingConfig holds the scoring weights, decay windows, and candidate
// bounds of the recommendation engine.
type MatchingConfig struct {
	CategoryWeight float64 `yaml:"category_weight" env:"MATCH_CATEGORY_WEIGHT" env-default:"30"`
	TagWeight      float64 `yaml:"tag_weight"      env:"MATCH_TAG_WEIGHT"      env-default:"30"`
	TimeWeight     float64 `yaml:"time_weight"     env:"MATCH_TIME_WEIGHT"     env-default:"20"`
	LocationWeight float64 `yaml:"location_weight" env:"MATCH_LOCATION_WEIGHT" env-default:"20"`

	// TimeCloseWindow earns full time credit; the score decays linearly to
	// zero at TimeHorizon.
	TimeCloseWindow time.Duration `yaml:"time_close_window" env:"MATCH_TIME_CLOSE_WINDOW" env-default:"24h"`
	TimeHorizon     time.Duration `yaml:"time_horizon"      env:"MATCH_TIME_HORIZON"      env-default:"720h"`

	// LocationCloseRadius earns full location credit; the score decays
	// linearly to zero at LocationMaxRadius. Both in meters.
	LocationCloseRadius float64 `yaml:"location_close_radius" env:"MATCH_LOCATION_CLOSE_RADIUS" env-default:"200"`
	LocationMaxRadius   float64 `yaml:"location_max_radius"   env:"MATCH_LOCATION_MAX_RADIUS"   env-default:"5000"`

	TopK            int     `yaml:"top_k"            env:"MATCH_TOP_K"            env-default:"10"`
	CandidateLimit  int     `yaml:"candidate_limit"  env:"MATCH_CANDIDATE_LIMIT"  env-default:"500"`
	NotifyThreshold float64 `yaml:"notify_threshold" env:"MATCH_NOTIFY_THRESHOLD" env-default:"70"`
}

// RabbitConfig holds the event-bus settings. An empty URL disables the bus
// (no background scans, fire-and-forget events become log-only).
type RabbitConfig struct {
	URL       string `yaml:"url"        env:"RABBIT_URL"`
	Exchange  string `yaml:"exchange"   env:"RABBIT_EXCHANGE"   env-default:"lostfound.events"`
	ItemQueue string `yaml:"item_queue" env:"RABBIT_ITEM_QUEUE" env-default:"lostfound.match-scan"`
}

// WorkerConfig holds the background task pool settings.
type WorkerConfig struct {
	Count     int `yaml:"count"      env:"WORKER_COUNT"      env-default:"4"`
	QueueSize int `yaml:"queue_size" env:"WORKER_QUEUE_SIZE" env-default:"256"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
