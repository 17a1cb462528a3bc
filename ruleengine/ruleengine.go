// Package ruleengine implements the greedy, per-hour decision policy: a
// pure function of (environment, battery snapshot) that never mutates its
// inputs and never emits IDLE.
package ruleengine

import (
	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
)

// Thresholds for the greedy policy (spec §3, frozen table).
const (
	PeakSOCThreshold = 0.40
	MinSOCThreshold  = 0.20
	MaxSOCThreshold  = 0.95
)

// Engine is the per-hour rule-based decision policy. New uses the frozen
// spec §3 thresholds; NewWithThresholds lets a deployment override them from
// config.Config. Decide uses the fields as they are, so a zero-value Engine
// has all thresholds at 0 (runner.Run substitutes New() for it).
type Engine struct {
	PeakSOCThreshold float64
	MinSOCThreshold  float64
	MaxSOCThreshold  float64
}

// New constructs a rule engine at the frozen default thresholds.
func New() Engine {
	return Engine{
		PeakSOCThreshold: PeakSOCThreshold,
		MinSOCThreshold:  MinSOCThreshold,
		MaxSOCThreshold:  MaxSOCThreshold,
	}
}

// NewWithThresholds constructs a rule engine from explicit thresholds, e.g.
// sourced from config.Config for a non-reference installation.
func NewWithThresholds(peakSOC, minSOC, maxSOC float64) Engine {
	return Engine{PeakSOCThreshold: peakSOC, MinSOCThreshold: minSOC, MaxSOCThreshold: maxSOC}
}

// Decide maps (env, battery snapshot) to an action. It is pure: calling it
// twice with equal inputs returns equal outputs, and it never mutates snap.
func (e Engine) Decide(env environment.State, snap battery.State) action.Action {
	net := env.SolarKWh - env.LoadKWh
	peak := env.Hour >= 18 && env.Hour <= 21
	soc := snap.SOC()

	if net >= 0 {
		if soc < e.MaxSOCThreshold {
			return action.ChargeBattery
		}
		return action.SellToGrid
	}

	// Deficit.
	if peak && soc > e.PeakSOCThreshold {
		return action.DischargeBattery
	}
	if soc > e.MinSOCThreshold {
		return action.DischargeBattery
	}
	return action.UseGrid
}

// ShouldConserve reports whether the battery should hold back energy rather
// than discharge it, per spec §4.3.
func ShouldConserve(hour int, snap battery.State, tomorrowCloudy bool) bool {
	soc := snap.SOC()
	if hour >= 20 && soc < 0.30 && tomorrowCloudy {
		return true
	}
	return soc < 0.15
}
