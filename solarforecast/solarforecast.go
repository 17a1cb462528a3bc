// Package solarforecast implements a forecast.Provider backed by the MET
// Norway weather API and a sun-position model, adapted from the teacher's
// estimateSolarPowerFromWeather routine. It only has an opinion about solar
// output; load is always left to the environment generator's synth fallback.
package solarforecast

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/meteo"
	"github.com/devskill-org/dayahead-planner/sun"
)

// Config names the install site and the panel's clear-sky peak output.
type Config struct {
	Latitude      float64
	Longitude     float64
	UserAgent     string
	PeakPowerKW   float64
	ReferenceDate time.Time // calendar date the hour/day/month predictions are anchored to
}

// Provider is a forecast.Provider that converts MET Norway cloud-cover
// forecasts into expected solar yield via a sun-altitude clear-sky model.
// It never predicts load: Predict always returns a negative load value so
// callers fall back to the synth estimate for that half of the pair.
type Provider struct {
	cfg    Config
	client *meteo.Client

	mu       sync.Mutex
	cached   *meteo.METJSONForecast
	fetchErr error
}

// New constructs a Provider. No network call happens until the first Predict.
func New(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		client: meteo.NewClient(cfg.UserAgent),
	}
}

func (p *Provider) forecastData() (*meteo.METJSONForecast, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return p.cached, nil
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	data, err := p.client.GetComplete(meteo.QueryParams{
		Location: meteo.Location{Latitude: p.cfg.Latitude, Longitude: p.cfg.Longitude},
	})
	if err != nil {
		p.fetchErr = err
		return nil, err
	}
	p.cached = data
	return data, nil
}

// Predict estimates solar kWh for the given hour using the cached weather
// forecast and the sun's altitude at that instant; load is always reported
// out of range (spec §6 contract: solar and load fallback independently).
func (p *Provider) Predict(hour, day, month int, weather forecast.Weather, season forecast.Season) (solarKWh, loadKWh float64, err error) {
	data, err := p.forecastData()
	if err != nil {
		return 0, -1, fmt.Errorf("solarforecast: %w", err)
	}
	target := time.Date(p.cfg.ReferenceDate.Year(), p.cfg.ReferenceDate.Month(), p.cfg.ReferenceDate.Day(), hour, 0, 0, 0, time.UTC)

	window := sun.WindowAt(target, p.cfg.Latitude, p.cfg.Longitude)
	if !window.InDaylight(target) {
		return 0, -1, nil
	}

	step := closestTimeStep(data, target)
	if step == nil {
		return 0, -1, forecast.ErrUnavailable
	}

	altitudeFactor := sun.AltitudeFactor(target, p.cfg.Latitude, p.cfg.Longitude)
	if altitudeFactor <= 0 {
		return 0, -1, nil
	}

	if symbol := step.GetSymbolCode(); symbol != nil && hasSnow(*symbol) {
		return 0, -1, nil
	}

	cloudFactor := 1.0
	if step.Data != nil && step.Data.Instant != nil && step.Data.Instant.Details != nil {
		if cf := step.Data.Instant.Details.CloudAreaFraction; cf != nil {
			cloudFactor = 1.0 - (*cf/100.0)*0.90
		}
	}

	solarKWh = p.cfg.PeakPowerKW * altitudeFactor * cloudFactor
	return solarKWh, -1, nil
}

// Status reports whether the cached weather forecast has been fetched.
func (p *Provider) Status() forecast.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetchErr != nil {
		return forecast.Status{Ready: false, LastError: p.fetchErr.Error()}
	}
	return forecast.Status{Ready: p.cached != nil}
}

func hasSnow(symbol meteo.WeatherSymbol) bool {
	return strings.Contains(string(symbol), "snow") || strings.Contains(string(symbol), "sleet")
}

func closestTimeStep(data *meteo.METJSONForecast, target time.Time) *meteo.ForecastTimeStep {
	if data.Properties == nil || len(data.Properties.Timeseries) == 0 {
		return nil
	}
	var closest *meteo.ForecastTimeStep
	minDiff := time.Duration(math.MaxInt64)
	for i := range data.Properties.Timeseries {
		step := &data.Properties.Timeseries[i]
		diff := step.Time.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			closest = step
		}
	}
	return closest
}
