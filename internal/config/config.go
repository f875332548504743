package config

import "time"

// Config is the root configuration for the sync service.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Prices   PricesConfig   `yaml:"prices"`
	Transit  TransitConfig  `yaml:"transit"`
	Cache    CacheConfig    `yaml:"cache"`
	Poller   PollerConfig   `yaml:"poller"`
	Server   ServerConfig   `yaml:"server"`
}

// InstanceConfig identifies this service instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// PricesConfig holds market-data upstream settings.
type PricesConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// Outbound call spacing. The interval is re-randomized in
	// [min_interval, max_interval] on every call to avoid retry storms.
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
}

// TransitConfig holds real-time departure upstream settings.
type TransitConfig struct {
	BaseURL      string        `yaml:"base_url"`
	StationsFile string        `yaml:"stations_file"` // reference CSV of physical stops
	Timeout      time.Duration `yaml:"timeout"`
	MinInterval  time.Duration `yaml:"min_interval"` // spacing between upstream calls
	StopDelay    time.Duration `yaml:"stop_delay"`   // extra pause between fan-out stops
}

// CacheConfig selects and configures the cache store backend.
type CacheConfig struct {
	Backend   string        `yaml:"backend"` // "file" or "postgres"
	Dir       string        `yaml:"dir"`
	Freshness time.Duration `yaml:"freshness"`
	Postgres  DBConfig      `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds watchlist refresher settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Tickers     []string      `yaml:"tickers"`
}

// ServerConfig holds the data-fetch API listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}
