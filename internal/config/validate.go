package config

import "fmt"

// Validate checks that required fields are present and consistent.
// Call after applyDefaults so optional fields are filled in.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return fmt.Errorf("instance.id is required")
	}

	if c.Prices.MinInterval > c.Prices.MaxInterval {
		return fmt.Errorf("prices.min_interval (%v) cannot exceed max_interval (%v)",
			c.Prices.MinInterval, c.Prices.MaxInterval)
	}

	if c.Transit.StationsFile == "" {
		return fmt.Errorf("transit.stations_file is required")
	}

	switch c.Cache.Backend {
	case "file":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file backend")
		}
	case "postgres":
		if err := validateDB("cache.postgres", c.Cache.Postgres); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cache.backend must be \"file\" or \"postgres\", got %q", c.Cache.Backend)
	}

	if c.Cache.Freshness <= 0 {
		return fmt.Errorf("cache.freshness must be positive")
	}

	return nil
}

func validateDB(prefix string, db DBConfig) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
