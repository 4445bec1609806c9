package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Slot backends.
const (
	SlotDynamoDB = "dynamodb"
	SlotRedis    = "redis"
	SlotSQLite   = "sqlite"
	SlotMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Slot     SlotConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Env       string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel  string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	RunLocal  bool   `envconfig:"RUN_LOCAL" default:"false"`
	HTTPAddr  string `envconfig:"STOREFRONT_HTTP_ADDR" default:":8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type SlotConfig struct {
	Backend    string `envconfig:"STOREFRONT_SLOT_BACKEND" default:"dynamodb"`
	Table      string `envconfig:"STOREFRONT_SLOT_TABLE" default:"storefront-cart-slots"`
	Namespace  string `envconfig:"STOREFRONT_SLOT_NAMESPACE" default:"avenge-cart"`
	RedisURL   string `envconfig:"STOREFRONT_REDIS_URL"`
	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`
}

type CartConfig struct {
	CacheTTL time.Duration `envconfig:"STOREFRONT_CART_CACHE_TTL" default:"30m"`
}

type CheckoutConfig struct {
	Delay            time.Duration `envconfig:"STOREFRONT_CHECKOUT_DELAY" default:"2s"`
	IdempotencyTable string        `envconfig:"STOREFRONT_IDEMPOTENCY_TABLE"`
	IdempotencyTTL   time.Duration `envconfig:"STOREFRONT_IDEMPOTENCY_TTL" default:"48h"`
	QueueURL         string        `envconfig:"STOREFRONT_CHECKOUT_QUEUE_URL"`
}

type MetricsConfig struct {
	Namespace string `envconfig:"STOREFRONT_METRICS_NAMESPACE" default:"Avenge/Storefront"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Slot.Backend = strings.ToLower(strings.TrimSpace(c.Slot.Backend))
	switch c.Slot.Backend {
	case SlotDynamoDB:
		if c.Slot.Table == "" {
			return fmt.Errorf("STOREFRONT_SLOT_TABLE is required for the dynamodb slot")
		}
	case SlotRedis:
		if c.Slot.RedisURL == "" {
			return fmt.Errorf("STOREFRONT_REDIS_URL is required for the redis slot")
		}
	case SlotSQLite:
		if c.Slot.SQLitePath == "" {
			return fmt.Errorf("STOREFRONT_SQLITE_PATH is required for the sqlite slot")
		}
	case SlotMemory:
	default:
		return fmt.Errorf("unknown slot backend %q", c.Slot.Backend)
	}
	if c.Slot.Namespace == "" {
		return fmt.Errorf("STOREFRONT_SLOT_NAMESPACE must not be empty")
	}
	if c.Checkout.Delay < 0 {
		return fmt.Errorf("STOREFRONT_CHECKOUT_DELAY must not be negative")
	}
	return nil
}
