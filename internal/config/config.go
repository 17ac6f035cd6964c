package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-payday-must-flow/internal/common"
	"github.com/Veraticus/the-payday-must-flow/internal/debt"
	"github.com/Veraticus/the-payday-must-flow/internal/forecast"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
)

// Config holds every setting payday reads.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Debt     DebtConfig
	Forecast ForecastConfig
	Payday   PaydayConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// ForecastConfig sets the projection horizon.
type ForecastConfig struct {
	Days int
}

// PaydayConfig tunes the allocation ritual.
type PaydayConfig struct {
	OffsetWindowDays int
	MaxChainDepth    int
}

// DebtConfig holds payoff simulator defaults.
type DebtConfig struct {
	Extra    decimal.Decimal
	Strategy debt.Strategy
	Cascade  bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("forecast.days", forecast.DefaultDays)
	v.SetDefault("payday.offset_window_days", payday.DefaultOffsetWindowDays)
	v.SetDefault("payday.max_chain_depth", payday.DefaultMaxChainDepth)
	v.SetDefault("debt.strategy", string(debt.Snowball))
	v.SetDefault("debt.extra", "0")
	v.SetDefault("debt.cascade", false)
}

// Load reads a typed Config out of v. Out-of-range horizons are clamped;
// unparseable values are rejected with common.ErrInvalidConfig.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var c Config
	c.Database.Path = ExpandPath(v.GetString("database.path"))
	if strings.TrimSpace(c.Database.Path) == "" {
		return Config{}, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	c.Logging.Level = v.GetString("logging.level")
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return Config{}, err
	}
	c.Logging.Format = v.GetString("logging.format")
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return Config{}, fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}

	c.Forecast.Days = ClampDays(v.GetInt("forecast.days"))

	c.Payday.OffsetWindowDays = v.GetInt("payday.offset_window_days")
	if c.Payday.OffsetWindowDays < 0 {
		return Config{}, fmt.Errorf("%w: payday.offset_window_days must not be negative", common.ErrInvalidConfig)
	}
	c.Payday.MaxChainDepth = v.GetInt("payday.max_chain_depth")
	if c.Payday.MaxChainDepth <= 0 {
		c.Payday.MaxChainDepth = payday.DefaultMaxChainDepth
	}

	strategy, err := debt.ParseStrategy(v.GetString("debt.strategy"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	c.Debt.Strategy = strategy

	extra, err := decimal.NewFromString(strings.TrimSpace(v.GetString("debt.extra")))
	if err != nil || extra.IsNegative() {
		return Config{}, fmt.Errorf("%w: debt.extra %q", common.ErrInvalidConfig, v.GetString("debt.extra"))
	}
	c.Debt.Extra = extra
	c.Debt.Cascade = v.GetBool("debt.cascade")

	return c, nil
}

// ClampDays keeps a forecast horizon within 1..forecast.MaxDays. Zero
// selects the default.
func ClampDays(days int) int {
	switch {
	case days == 0:
		return forecast.DefaultDays
	case days < 1:
		return 1
	case days > forecast.MaxDays:
		return forecast.MaxDays
	}
	return days
}

// PaydayOptions converts the ritual settings.
func (c Config) PaydayOptions() payday.Options {
	return payday.Options{
		OffsetWindowDays: c.Payday.OffsetWindowDays,
		MaxChainDepth:    c.Payday.MaxChainDepth,
	}
}
