package environment

import (
	"testing"

	"github.com/devskill-org/dayahead-planner/forecast"
)

func baseConfig() Config {
	return Config{
		Season:  forecast.Summer,
		Weather: forecast.Sunny,
		DayType: Weekday,
		Month:   6,
	}
}

func TestGenerate24hIsDeterministic(t *testing.T) {
	cfg := baseConfig()
	a, err := Generate24h(cfg, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate24h(cfg, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Error("identical (config, seed) must yield identical 24-tuple")
	}
}

func TestGenerate24hDifferentSeedsDiffer(t *testing.T) {
	cfg := baseConfig()
	a, _ := Generate24h(cfg, 1)
	b, _ := Generate24h(cfg, 2)
	if a == b {
		t.Error("expected different seeds to generally produce different output")
	}
}

func TestGenerate24hProducesAllHours(t *testing.T) {
	states, err := Generate24h(baseConfig(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for h, s := range states {
		if s.Hour != h {
			t.Errorf("states[%d].Hour = %d", h, s.Hour)
		}
		if s.SolarKWh < 0 || s.LoadKWh < 0 {
			t.Errorf("hour %d: negative solar/load %v/%v", h, s.SolarKWh, s.LoadKWh)
		}
		if s.Price <= 0 {
			t.Errorf("hour %d: non-positive price %v", h, s.Price)
		}
	}
}

func TestSolarZeroOutsideDaylightWindow(t *testing.T) {
	cfg := baseConfig()
	states, _ := Generate24h(cfg, 7)
	for _, h := range []int{0, 1, 2, 3, 4, 5, 22, 23} {
		if states[h].SolarKWh != 0 {
			t.Errorf("expected zero solar at hour %d (pre-fallback noise), got %v", h, states[h].SolarKWh)
		}
	}
}

type stubProvider struct {
	solar, load float64
	err         error
}

func (s stubProvider) Predict(hour, day, month int, weather forecast.Weather, season forecast.Season) (float64, float64, error) {
	return s.solar, s.load, s.err
}

func (s stubProvider) Status() forecast.Status { return forecast.Status{Ready: true} }

func TestOutOfRangeProviderValueFallsBackToSynth(t *testing.T) {
	cfg := baseConfig()
	cfg.Provider = stubProvider{solar: 999, load: 999}
	states, err := Generate24h(cfg, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// out-of-range provider output must never appear verbatim
	for _, s := range states {
		if s.SolarKWh == 999 || s.LoadKWh == 999 {
			t.Fatal("out-of-range provider value leaked into result")
		}
	}
}

func TestInRangeProviderValueIsUsed(t *testing.T) {
	cfg := baseConfig()
	cfg.Provider = stubProvider{solar: 4.2, load: 1.5}
	states, err := Generate24h(cfg, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range states {
		if s.SolarKWh != 4.2 || s.LoadKWh != 1.5 {
			t.Errorf("hour %d: expected provider values to be used, got solar=%v load=%v", s.Hour, s.SolarKWh, s.LoadKWh)
		}
	}
}
