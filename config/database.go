package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"crimetracker"`
	Password string `env:"PASSWORD" envDefault:"crimetracker"`
	Name     string `env:"NAME"     envDefault:"crimetracker"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int  `env:"MAX_OPEN_CONNS"          envDefault:"25"`
}

// RedisConfig contains Redis configuration. Redis holds sessions, the auth
// event and notification channels, and the admin stats cache.
type RedisConfig struct {
	URI                string        `env:"URI"                  envDefault:"localhost:6379"`
	Password           string        `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string      `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string        `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string        `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool          `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string      `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool          `env:"USE_CLUSTER"          envDefault:"false"`
	StatsCacheTTL      time.Duration `env:"STATS_CACHE_TTL"      envDefault:"30s"`
}
