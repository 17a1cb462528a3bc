// Package config holds the JSON-backed, validated configuration for the
// day-ahead planner, following the same load/validate/marshal pattern the
// teacher's scheduler config uses.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrInvalidConfig wraps every validation failure Config.Validate returns,
// so callers can test for it with errors.Is regardless of which field failed.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full set of tunables for a planner instance: the frozen
// physics/tariff/rule defaults (all overridable) plus ambient settings for
// logging, the MILP solver, optional weather/market/telemetry/persistence
// integrations, and the HTTP/health surface.
type Config struct {
	// Logging
	LogLevel  string `json:"log_level"`  // debug, info, warn, error
	LogFormat string `json:"log_format"` // text, json

	// HTTP / health
	HTTPPort        int `json:"http_port"`
	HealthCheckPort int `json:"health_check_port"` // 0 = disabled

	// Battery physics (spec §3, overridable)
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	ChargeEfficiency   float64 `json:"charge_efficiency"`
	DischargeEfficiency float64 `json:"discharge_efficiency"`
	MinSOC             float64 `json:"min_soc"`
	MaxSOC             float64 `json:"max_soc"`
	MaxChargeKW        float64 `json:"max_charge_kw"`
	MaxDischargeKW     float64 `json:"max_discharge_kw"`

	// Tariff (spec §3, overridable)
	PeakPrice   float64 `json:"peak_price"`
	NightPrice  float64 `json:"night_price"`
	NormalPrice float64 `json:"normal_price"`
	ExportPrice float64 `json:"export_price"`

	// Rule engine thresholds (spec §3, overridable)
	PeakSOCThreshold float64 `json:"peak_soc_threshold"`
	MinSOCThreshold  float64 `json:"min_soc_threshold"`
	MaxSOCThreshold  float64 `json:"max_soc_threshold"`

	// MILP solver policy
	MILPTimeLimit time.Duration `json:"milp_time_limit"`
	MILPMipGap    float64       `json:"milp_mip_gap"`

	// Weather / solar forecast provider
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UserAgent string  `json:"user_agent"`

	// Optional live battery telemetry (Modbus)
	PlantModbusAddress string `json:"plant_modbus_address"`

	// Optional result persistence
	PostgresConnString string `json:"postgres_conn_string"`

	// Optional ENTSO-E day-ahead market feed (alternate tariff.Provider)
	MarketSecurityToken string `json:"market_security_token"`
	MarketURLFormat     string `json:"market_url_format"`
}

// DefaultConfig returns the frozen defaults named in spec §3, plus sane
// ambient defaults for everything else.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",

		HTTPPort:        8080,
		HealthCheckPort: 0,

		BatteryCapacityKWh:  13.5,
		ChargeEfficiency:    0.96,
		DischargeEfficiency: 0.96,
		MinSOC:              0.20,
		MaxSOC:              0.95,
		MaxChargeKW:         5.0,
		MaxDischargeKW:      5.0,

		PeakPrice:   6.78,
		NightPrice:  4.80,
		NormalPrice: 5.65,
		ExportPrice: 4.00,

		PeakSOCThreshold: 0.40,
		MinSOCThreshold:  0.20,
		MaxSOCThreshold:  0.95,

		MILPTimeLimit: 0,
		MILPMipGap:    0.01,

		Latitude:  56.9496,
		Longitude: 24.1052,
		UserAgent: "dayahead-planner/1.0 (ops@example.com)",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a JSON file.
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()
	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer.
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}
	return nil
}

// Validate checks the configuration for the errors spec §7 classifies as
// InvalidConfig: out-of-range SOC, non-positive capacity, unknown enums.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: log_level %s, must be one of: debug, info, warn, error", ErrInvalidConfig, c.LogLevel)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("%w: log_format %s, must be one of: text, json", ErrInvalidConfig, c.LogFormat)
	}

	if c.HealthCheckPort < 0 || c.HealthCheckPort > 65535 {
		return fmt.Errorf("%w: health_check_port must be between 0 and 65535, got: %d", ErrInvalidConfig, c.HealthCheckPort)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("%w: http_port must be between 1 and 65535, got: %d", ErrInvalidConfig, c.HTTPPort)
	}

	if c.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("%w: battery_capacity_kwh must be positive, got: %f", ErrInvalidConfig, c.BatteryCapacityKWh)
	}
	if c.MaxChargeKW < 0 || c.MaxDischargeKW < 0 {
		return fmt.Errorf("%w: battery rate limits must be non-negative", ErrInvalidConfig)
	}
	if c.MinSOC < 0 || c.MinSOC > 1 || c.MaxSOC < 0 || c.MaxSOC > 1 {
		return fmt.Errorf("%w: min_soc/max_soc must be in [0,1]", ErrInvalidConfig)
	}
	if c.MinSOC > c.MaxSOC {
		return fmt.Errorf("%w: min_soc (%f) cannot be greater than max_soc (%f)", ErrInvalidConfig, c.MinSOC, c.MaxSOC)
	}
	if c.ChargeEfficiency <= 0 || c.ChargeEfficiency > 1 || c.DischargeEfficiency <= 0 || c.DischargeEfficiency > 1 {
		return fmt.Errorf("%w: charge/discharge efficiency must be in (0,1]", ErrInvalidConfig)
	}

	if c.PeakPrice <= 0 || c.NightPrice <= 0 || c.NormalPrice <= 0 || c.ExportPrice < 0 {
		return fmt.Errorf("%w: tariff prices must be positive (export may be zero)", ErrInvalidConfig)
	}

	if c.MILPMipGap < 0 || c.MILPMipGap > 1 {
		return fmt.Errorf("%w: milp_mip_gap must be in [0,1], got: %f", ErrInvalidConfig, c.MILPMipGap)
	}
	if c.MILPTimeLimit < 0 {
		return fmt.Errorf("%w: milp_time_limit must be non-negative", ErrInvalidConfig)
	}

	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got: %f", ErrInvalidConfig, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got: %f", ErrInvalidConfig, c.Longitude)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("%w: user_agent cannot be empty", ErrInvalidConfig)
	}

	return nil
}

// MarshalJSON renders durations as Go duration strings, matching the
// teacher's convention for human-editable config files.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		MILPTimeLimit string `json:"milp_time_limit"`
	}{
		Alias:         (*Alias)(c),
		MILPTimeLimit: c.MILPTimeLimit.String(),
	})
}

// UnmarshalJSON parses duration fields expressed as Go duration strings.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		MILPTimeLimit string `json:"milp_time_limit"`
	}{
		Alias: (*Alias)(c),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.MILPTimeLimit != "" {
		d, err := time.ParseDuration(aux.MILPTimeLimit)
		if err != nil {
			return fmt.Errorf("invalid milp_time_limit: %w", err)
		}
		c.MILPTimeLimit = d
	}
	return nil
}

// String returns a pretty-printed JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
