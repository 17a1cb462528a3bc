// Package forecast defines the contract the environment generator consults
// for hourly solar and load estimates, plus a process-wide singleton cache
// adapted from the teacher's WeatherForecastCache pattern so a single heavy
// predictor is loaded once and shared safely across concurrent simulations.
package forecast

import (
	"errors"
	"sync"
)

// ErrUnavailable signals that the predictor could not produce a usable
// estimate for the requested hour; callers fall back to the deterministic
// synth in package environment.
var ErrUnavailable = errors.New("forecast: predictor unavailable")

// Season and Weather mirror the environment generator's configuration enums.
type Season string

const (
	Summer Season = "summer"
	Winter Season = "winter"
)

type Weather string

const (
	Sunny        Weather = "sunny"
	PartlyCloudy Weather = "partly_cloudy"
	Cloudy       Weather = "cloudy"
	Rainy        Weather = "rainy"
)

// Status reports on the health of the underlying predictor.
type Status struct {
	Ready      bool
	LastError  string
	SampleSize int
}

// Provider is the external, opaque forecast model contract (spec §6). Core
// code never assumes anything about the implementation beyond this
// interface; it is always treated as a fallible, possibly I/O-bound, black
// box.
type Provider interface {
	// Predict returns a solar and load estimate in kWh for the given hour.
	// Implementations may fail; the caller falls back to synth generation.
	Predict(hour, day, month int, weather Weather, season Season) (solarKWh, loadKWh float64, err error)
	Status() Status
}

// Singleton lazily wraps a Provider behind a mutex so the same heavy
// predictor instance can be shared by concurrent simulation workers without
// each one needing to know whether the wrapped implementation is itself
// thread-safe.
type Singleton struct {
	once    sync.Once
	mu      sync.RWMutex
	factory func() (Provider, error)
	inner   Provider
	initErr error
}

// NewSingleton builds a Singleton around a factory that constructs the real
// provider on first use (e.g. loading a trained model from disk).
func NewSingleton(factory func() (Provider, error)) *Singleton {
	return &Singleton{factory: factory}
}

func (s *Singleton) ensure() error {
	s.once.Do(func() {
		p, err := s.factory()
		s.mu.Lock()
		s.inner, s.initErr = p, err
		s.mu.Unlock()
	})
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initErr
}

// Predict lazily initializes the wrapped provider on first call and then
// serializes calls to it behind the write lock, one Predict at a time.
func (s *Singleton) Predict(hour, day, month int, weather Weather, season Season) (float64, float64, error) {
	if err := s.ensure(); err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Predict(hour, day, month, weather, season)
}

// Status returns the wrapped provider's status, or a not-ready status if
// initialization has not completed or failed.
func (s *Singleton) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inner == nil {
		msg := ""
		if s.initErr != nil {
			msg = s.initErr.Error()
		}
		return Status{Ready: false, LastError: msg}
	}
	return s.inner.Status()
}
