// README: Config loader with defaults for HTTP, backend, pricing, maps, Redis, DB and Kafka settings.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const envPrefix = "MATASAA"

// PricingConfig mirrors the fare table the public site advertises.
type PricingConfig struct {
	BaseRatePerKm         float64            `mapstructure:"base_rate_per_km"`
	MinimumFare           float64            `mapstructure:"minimum_fare"`
	LastMinuteMultiplier  float64            `mapstructure:"last_minute_multiplier"`
	LastMinuteWindowHours float64            `mapstructure:"last_minute_window_hours"`
	PlaceholderDistanceKm float64            `mapstructure:"placeholder_distance_km"`
	VehicleMultipliers    map[string]float64 `mapstructure:"vehicle_multipliers"`
	Currency              string             `mapstructure:"currency"`
}

type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	BookingsPath string        `mapstructure:"bookings_path"`
	PricePath    string        `mapstructure:"price_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Service string `mapstructure:"service"`
	HTTP    struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Backend BackendConfig `mapstructure:"backend"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Maps    struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"maps"`
	Booking struct {
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"booking"`
	Quote struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"quote"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
}

// Location resolves the booking time zone. Pickup dates and times typed into
// the form are wall-clock values in this zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load booking timezone %q: %w", c.Booking.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from MATASAA_* environment variables and, when
// MATASAA_CONFIG names a file, from that file first.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", "")
	v.SetDefault("service", "booking-api")
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("backend.base_url", "https://api.tredicik.com")
	v.SetDefault("backend.bookings_path", "/api/v1/bookings")
	v.SetDefault("backend.price_path", "/api/v1/bookings/calculate-price")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("pricing.base_rate_per_km", 6.48)
	v.SetDefault("pricing.minimum_fare", 32.00)
	v.SetDefault("pricing.last_minute_multiplier", 1.15)
	v.SetDefault("pricing.last_minute_window_hours", 2.0)
	v.SetDefault("pricing.placeholder_distance_km", 10.0)
	v.SetDefault("pricing.vehicle_multipliers", map[string]float64{
		"standard": 1.0, // 1-3 passengers
		"xl":       1.3, // 4-6 passengers
	})
	v.SetDefault("pricing.currency", "ZAR")

	v.SetDefault("maps.api_key", "")
	v.SetDefault("booking.timezone", "Africa/Johannesburg")
	v.SetDefault("quote.ttl", 30*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("kafka.brokers", []string{})
}

func (c Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Pricing.BaseRatePerKm < 0 || c.Pricing.MinimumFare < 0 {
		return fmt.Errorf("pricing rates must not be negative")
	}
	if len(c.Pricing.VehicleMultipliers) == 0 {
		return fmt.Errorf("pricing.vehicle_multipliers must name at least one vehicle type")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
