package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/loyalty"
)

const envPrefix = "WORKHUB"

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Database *DatabaseConfig `mapstructure:"database"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	SQLite   *SQLiteConfig   `mapstructure:"sqlite"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Loyalty  *LoyaltyConfig  `mapstructure:"loyalty"`
	Orders   *OrdersConfig   `mapstructure:"orders"`
	Tracing  *TracingConfig  `mapstructure:"tracing"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL            string `mapstructure:"url"`
	IdempotencyTTL string `mapstructure:"idempotency_ttl"`
}

type TierRuleConfig struct {
	PointsPerUnit int    `mapstructure:"points_per_unit"`
	UnitAmount    string `mapstructure:"unit_amount"`
}

type LoyaltyConfig struct {
	PremiumAfterOrders int                       `mapstructure:"premium_after_orders"`
	Tiers              map[string]TierRuleConfig `mapstructure:"tiers"`
}

type OrdersConfig struct {
	DefaultCourier string `mapstructure:"default_courier"`
}

type TracingConfig struct {
	ServiceName string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5173"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "workhub")
	v.SetDefault("postgres.password", "workhub")
	v.SetDefault("postgres.db", "workhub")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("sqlite.path", "workhub.db")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.idempotency_ttl", "24h")
	v.SetDefault("loyalty.premium_after_orders", 10)
	v.SetDefault("loyalty.tiers.standard.points_per_unit", 2)
	v.SetDefault("loyalty.tiers.standard.unit_amount", "10")
	v.SetDefault("loyalty.tiers.premium.points_per_unit", 4)
	v.SetDefault("loyalty.tiers.premium.unit_amount", "10")
	v.SetDefault("orders.default_courier", domain.DefaultCourier)
	v.SetDefault("tracing.service_name", "workhub-orders-api")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the YAML file at path. Every key can be overridden from the
// environment, e.g. WORKHUB_API_PORT for api.port.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if _, err := conf.Loyalty.Rules(); err != nil {
		return nil, err
	}
	if conf.Loyalty.PremiumAfterOrders < 1 {
		return nil, fmt.Errorf("loyalty.premium_after_orders must be at least 1, got %d", conf.Loyalty.PremiumAfterOrders)
	}

	return &conf, nil
}

// Rules converts the configured tier table into calculator rules.
func (c *LoyaltyConfig) Rules() (loyalty.Rules, error) {
	rules := make(loyalty.Rules, len(c.Tiers))
	for name, tc := range c.Tiers {
		tier, ok := domain.ParseTier(name)
		if !ok {
			return nil, fmt.Errorf("loyalty.tiers: unknown tier %q", name)
		}

		unit, err := decimal.NewFromString(tc.UnitAmount)
		if err != nil {
			return nil, fmt.Errorf("loyalty.tiers.%s.unit_amount -> %w", name, err)
		}

		rules[tier] = loyalty.TierRule{
			PointsPerUnit: tc.PointsPerUnit,
			UnitAmount:    unit,
		}
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("loyalty.tiers -> %w", err)
	}

	return rules, nil
}

// WatchLoyalty calls onChange with the new tier rules every time the config
// file changes on disk. Invalid edits are reported through onError and ignored.
func WatchLoyalty(path string, onChange func(loyalty.Rules), onError func(error)) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		onError(fmt.Errorf("v.ReadInConfig -> %w", err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf, err := decode(v)
		if err != nil {
			onError(fmt.Errorf("reload %s -> %w", e.Name, err))
			return
		}

		rules, _ := conf.Loyalty.Rules()
		onChange(rules)
	})
	v.WatchConfig()
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}
