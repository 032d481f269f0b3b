package config

import (
	"fmt"
	"strings"
)

// StoreBackend selects where pending verifications live.
type StoreBackend string

const (
	// StoreRedis keeps pending verifications in Redis with native TTLs.
	StoreRedis StoreBackend = "redis"
	// StoreMemory keeps them in process memory. Development and tests only.
	StoreMemory StoreBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (s *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "redis", "memory":
		*s = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: redis, memory)", v)
	}
}

// StoreConfig selects the pending-verification store backend.
type StoreConfig struct {
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"redis"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
