package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPricesBaseURL     = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultTransitBaseURL    = "https://www.wienerlinien.at/ogd_realtime/monitor"
	DefaultStationsFile      = "data/wienerlinien-ogd-haltepunkte.csv"
	DefaultAPITimeout        = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultPriceMinInterval  = 1 * time.Second
	DefaultPriceMaxInterval  = 3 * time.Second
	DefaultTransitInterval   = 2 * time.Second
	DefaultStopDelay         = 1500 * time.Millisecond
	DefaultCacheBackend      = "file"
	DefaultCacheDir          = "cache"
	DefaultFreshness         = 6 * time.Hour
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultPollInterval      = 1 * time.Hour
	DefaultPollConcurrency   = 2
	DefaultServerAddr        = ":8090"
)

func (c *Config) applyDefaults() {
	// Prices defaults
	if c.Prices.BaseURL == "" {
		c.Prices.BaseURL = DefaultPricesBaseURL
	}
	if c.Prices.Timeout == 0 {
		c.Prices.Timeout = DefaultAPITimeout
	}
	if c.Prices.MaxRetries == 0 {
		c.Prices.MaxRetries = DefaultMaxRetries
	}
	if c.Prices.MinInterval == 0 {
		c.Prices.MinInterval = DefaultPriceMinInterval
	}
	if c.Prices.MaxInterval == 0 {
		c.Prices.MaxInterval = DefaultPriceMaxInterval
	}

	// Transit defaults
	if c.Transit.BaseURL == "" {
		c.Transit.BaseURL = DefaultTransitBaseURL
	}
	if c.Transit.StationsFile == "" {
		c.Transit.StationsFile = DefaultStationsFile
	}
	if c.Transit.Timeout == 0 {
		c.Transit.Timeout = DefaultAPITimeout
	}
	if c.Transit.MinInterval == 0 {
		c.Transit.MinInterval = DefaultTransitInterval
	}
	if c.Transit.StopDelay == 0 {
		c.Transit.StopDelay = DefaultStopDelay
	}

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
	if c.Cache.Freshness == 0 {
		c.Cache.Freshness = DefaultFreshness
	}
	applyDBDefaults(&c.Cache.Postgres)

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
