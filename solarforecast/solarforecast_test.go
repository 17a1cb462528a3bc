package solarforecast

import (
	"testing"
	"time"

	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/meteo"
)

func TestPredictReturnsNegativeLoadAlways(t *testing.T) {
	cloud := 10.0
	p := &Provider{
		cfg: Config{Latitude: 56.9496, Longitude: 24.1052, PeakPowerKW: 8.0, ReferenceDate: time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)},
		cached: &meteo.METJSONForecast{
			Properties: &meteo.Forecast{
				Timeseries: []meteo.ForecastTimeStep{
					{
						Time: time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC),
						Data: &meteo.ForecastTimeStepData{
							Instant: &meteo.ForecastInstantData{
								Details: &meteo.ForecastTimeInstant{CloudAreaFraction: &cloud},
							},
						},
					},
				},
			},
		},
	}

	_, load, err := p.Predict(12, 1, 6, forecast.Sunny, forecast.Summer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if load >= 0 {
		t.Errorf("solarforecast must never assert a load estimate, got %v", load)
	}
}

func TestPredictZeroOutsideDaylight(t *testing.T) {
	p := &Provider{
		cfg:    Config{Latitude: 56.9496, Longitude: 24.1052, PeakPowerKW: 8.0, ReferenceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		cached: &meteo.METJSONForecast{Properties: &meteo.Forecast{Timeseries: []meteo.ForecastTimeStep{{Time: time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)}}}},
	}
	solar, _, err := p.Predict(2, 1, 1, forecast.Sunny, forecast.Winter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solar != 0 {
		t.Errorf("solar at 2am = %v, want 0", solar)
	}
}
