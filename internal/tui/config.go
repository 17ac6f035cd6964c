package tui

import (
	"context"

	"github.com/Veraticus/the-payday-must-flow/internal/calendar"
	"github.com/Veraticus/the-payday-must-flow/internal/forecast"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/tui/themes"
)

// SnapshotLoader is the read side of storage the dashboard needs.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (model.Snapshot, error)
}

// Config holds TUI configuration.
type Config struct {
	Loader       SnapshotLoader
	Clock        calendar.Clock
	Theme        themes.Theme
	ForecastDays int
	Width        int
	Height       int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Clock:        calendar.SystemClock{},
		ForecastDays: forecast.DefaultDays,
		Width:        80,
		Height:       24,
	}
}

// WithLoader sets where snapshots come from.
func WithLoader(loader SnapshotLoader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithClock sets the clock that decides "today".
func WithClock(clock calendar.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithForecastDays sets the forecast horizon.
func WithForecastDays(days int) Option {
	return func(c *Config) {
		c.ForecastDays = days
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
