package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendDocument = "document"
	BackendMongo    = "mongo"
)

type Config struct {
	Port         string        `env:"PORT,          default=8080"`
	Env          string        `env:"ENV,           default=development"`
	LogLevel     string        `env:"LOG_LEVEL,     default=info"`
	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL,   default=24h"`
	StoreBackend string        `env:"STORE_BACKEND, default=document"`
	DataDir      string        `env:"DATA_DIR,      default=data"`
	Workers      int           `env:"WORKERS,       default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dreamscape_identity"`
}

type RedisConfig struct {
	// Addr left empty disables the Redis-backed activity dedup.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if cfg.StoreBackend != BackendDocument && cfg.StoreBackend != BackendMongo {
		panic(fmt.Sprintf("config: unknown STORE_BACKEND %q", cfg.StoreBackend))
	}
	return &cfg
}
