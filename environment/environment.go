// Package environment generates the 24 hourly EnvironmentState values the
// simulation runner steps through, combining an optional forecast provider
// with a deterministic seeded synth fallback so that a simulation is
// always reproducible even when the predictor is unavailable.
package environment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/tariff"
)

// State is the immutable per-hour value consumed by engines and the runner.
type State struct {
	Hour     int
	SolarKWh float64
	LoadKWh  float64
	Price    float64
}

const (
	inverterMaxKWh = 8.0

	solarSummerPeak = 10.0
	solarWinterPeak = 5.0

	loadSeasonSummer = 1.3
	loadSeasonWinter = 0.8
)

var weatherMultiplier = map[forecast.Weather]float64{
	forecast.Sunny:        1.0,
	forecast.PartlyCloudy: 0.7,
	forecast.Cloudy:       0.4,
	forecast.Rainy:        0.2,
}

// DayType distinguishes the base-load table used by the load synth fallback.
type DayType string

const (
	Weekday DayType = "weekday"
	Weekend DayType = "weekend"
)

// consumptionBase holds base kWh by period, separately for weekday/weekend,
// grounded on the original model's CONSUMPTION_BASE_WEEKDAY/WEEKEND tables.
var consumptionBase = map[DayType]map[tariff.Period]float64{
	Weekday: {
		tariff.Night:   0.5,
		tariff.Morning: 2.5,
		tariff.Day:     1.0,
		tariff.Evening: 4.0,
	},
	Weekend: {
		tariff.Night:   0.6,
		tariff.Morning: 3.0,
		tariff.Day:     2.0,
		tariff.Evening: 3.5,
	},
}

// Config parameterizes one generator run. Month is used only by the
// forecast provider contract; the synth fallback does not vary by month.
type Config struct {
	Season    forecast.Season
	Weather   forecast.Weather
	DayType   DayType
	Month     int
	Provider  forecast.Provider // optional; nil disables the provider entirely
	Tariff    tariff.Provider   // optional; nil uses tariff.StaticTable
}

// Generate24h produces the 24 EnvironmentState values for the given seed.
// Identical (config, seed) always yields an identical result: the provider
// is consulted in ascending hour order and the RNG is seeded once up front.
func Generate24h(cfg Config, seed int64) ([24]State, error) {
	var out [24]State
	rng := rand.New(rand.NewSource(seed))

	tariffProvider := cfg.Tariff
	if tariffProvider == nil {
		tariffProvider = tariff.StaticTable{}
	}

	for hour := 0; hour < 24; hour++ {
		solar, load, err := hourlyForecast(cfg, hour, rng)
		if err != nil {
			return out, err
		}
		price, err := tariffProvider.PriceAt(hour)
		if err != nil {
			return out, fmt.Errorf("environment: price lookup for hour %d: %w", hour, err)
		}
		out[hour] = State{Hour: hour, SolarKWh: solar, LoadKWh: load, Price: price}
	}
	return out, nil
}

func hourlyForecast(cfg Config, hour int, rng *rand.Rand) (solarKWh, loadKWh float64, err error) {
	if cfg.Provider != nil {
		s, l, perr := cfg.Provider.Predict(hour, dayTypeToDayIndex(cfg.DayType), cfg.Month, cfg.Weather, cfg.Season)
		if perr == nil && s >= 0 && s <= 15 {
			solarKWh = s
		} else {
			solarKWh = synthSolar(cfg, hour, rng)
		}
		if perr == nil && l >= 0 && l <= 10 {
			loadKWh = l
		} else {
			loadKWh = synthLoad(cfg, hour, rng)
		}
		return solarKWh, loadKWh, nil
	}
	return synthSolar(cfg, hour, rng), synthLoad(cfg, hour, rng), nil
}

func dayTypeToDayIndex(dt DayType) int {
	if dt == Weekend {
		return 6
	}
	return 1
}

// synthSolar implements the deterministic bell-curve synth of spec §4.2.
func synthSolar(cfg Config, hour int, rng *rand.Rand) float64 {
	seasonPeak := solarSummerPeak
	if cfg.Season == forecast.Winter {
		seasonPeak = solarWinterPeak
	}
	mult, ok := weatherMultiplier[cfg.Weather]
	if !ok {
		mult = weatherMultiplier[forecast.Sunny]
	}
	peak := seasonPeak * mult

	var base float64
	switch {
	case hour >= 6 && hour <= 12:
		base = peak * math.Sin(float64(hour-6)/6*math.Pi/2)
	case hour > 12 && hour <= 14:
		base = peak
	case hour > 14 && hour <= 18:
		base = peak * math.Sin(float64(18-hour)/4*math.Pi/2)
	default:
		base = 0
	}

	noise := 0.7 + rng.Float64()*0.3 // Uniform[0.7, 1.0]
	v := base * noise
	if v > inverterMaxKWh {
		v = inverterMaxKWh
	}
	if v < 0 {
		v = 0
	}
	return v
}

// synthLoad implements the base-table load fallback of spec §4.2.
func synthLoad(cfg Config, hour int, rng *rand.Rand) float64 {
	period := tariff.PeriodOf(hour)
	base := consumptionBase[cfg.DayType][period]
	if base == 0 {
		base = consumptionBase[Weekday][period]
	}

	seasonFactor := loadSeasonSummer
	if cfg.Season == forecast.Winter {
		seasonFactor = loadSeasonWinter
	}

	noise := 0.85 + rng.Float64()*0.30 // Uniform[0.85, 1.15]
	return base * seasonFactor * noise
}
