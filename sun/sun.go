// Package sun wraps suncalc position/time calculations for the solar
// forecast provider: sunrise/sunset bounds and the altitude factor used to
// scale clear-sky solar output through the day.
package sun

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Window is the sunrise/sunset bound for one calendar day at a location.
type Window struct {
	Sunrise time.Time
	Sunset  time.Time
}

// WindowAt returns the sunrise/sunset window for t's calendar day.
func WindowAt(t time.Time, lat, lon float64) Window {
	times := suncalc.GetTimes(t, lat, lon)
	return Window{
		Sunrise: times["sunrise"].Value,
		Sunset:  times["sunset"].Value,
	}
}

// InDaylight reports whether t falls within the sunrise/sunset window.
func (w Window) InDaylight(t time.Time) bool {
	return !t.Before(w.Sunrise) && !t.After(w.Sunset)
}

// AltitudeFactor returns sin(altitude) at t, clamped to [0,1]. It is 0 before
// sunrise, after sunset, or whenever the sun is below the horizon.
func AltitudeFactor(t time.Time, lat, lon float64) float64 {
	pos := suncalc.GetPosition(t, lat, lon)
	factor := math.Sin(pos.Altitude)
	if factor < 0 {
		return 0
	}
	return factor
}
