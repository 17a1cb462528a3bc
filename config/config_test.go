package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidateRejectsBadSOCBounds(t *testing.T) {
	c := DefaultConfig()
	c.MinSOC = 0.9
	c.MaxSOC = 0.2
	if err := c.Validate(); err == nil {
		t.Error("expected error when min_soc > max_soc")
	}
}

func TestValidateRejectsNonPositiveCapacity(t *testing.T) {
	c := DefaultConfig()
	c.BatteryCapacityKWh = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-positive capacity")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	c := DefaultConfig()
	c.LogLevel = "verbose"
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	original := DefaultConfig()
	original.HTTPPort = 9090

	var buf bytes.Buffer
	if err := original.SaveConfigToWriter(&buf); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadConfigFromReader(&buf)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.HTTPPort != 9090 {
		t.Errorf("http_port = %d, want 9090", loaded.HTTPPort)
	}
}

func TestLoadConfigFromReaderRejectsInvalid(t *testing.T) {
	r := strings.NewReader(`{"log_level": "verbose"}`)
	if _, err := LoadConfigFromReader(r); err == nil {
		t.Error("expected validation error to propagate")
	}
}

func TestValidateErrorIsErrInvalidConfig(t *testing.T) {
	c := DefaultConfig()
	c.BatteryCapacityKWh = -1
	err := c.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected errors.Is(err, ErrInvalidConfig) to hold, got: %v", err)
	}
}
