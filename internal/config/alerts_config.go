package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AlertsConfig holds the stock-alert scan settings loaded from a TOML file.
type AlertsConfig struct {
	StockAlerts StockAlertSettings `toml:"stock_alerts"`
}

// StockAlertSettings controls the periodic low-stock scan.
type StockAlertSettings struct {
	Enabled          bool   `toml:"enabled"`
	IntervalMinutes  int    `toml:"interval_minutes"`
	DefaultThreshold int    `toml:"default_threshold"`
	Channel          string `toml:"channel"` // Redis channel alerts are published on
}

// DefaultAlertsConfig returns the settings used when no config file is present.
func DefaultAlertsConfig() *AlertsConfig {
	return &AlertsConfig{
		StockAlerts: StockAlertSettings{
			Enabled:          true,
			IntervalMinutes:  15,
			DefaultThreshold: 5,
			Channel:          "shopmart:alerts:stock",
		},
	}
}

// LoadAlertsConfig reads the TOML file at path, falling back to defaults for
// any unset field.
func LoadAlertsConfig(path string) (*AlertsConfig, error) {
	cfg := DefaultAlertsConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse alerts config %s: %w", path, err)
	}
	if cfg.StockAlerts.IntervalMinutes <= 0 {
		cfg.StockAlerts.IntervalMinutes = 15
	}
	if cfg.StockAlerts.DefaultThreshold <= 0 {
		cfg.StockAlerts.DefaultThreshold = 5
	}
	if cfg.StockAlerts.Channel == "" {
		cfg.StockAlerts.Channel = "shopmart:alerts:stock"
	}
	return cfg, nil
}
