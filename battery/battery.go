// Package battery implements the stateful energy-store physics model: a
// single battery with asymmetric round-trip efficiency, state-of-charge
// bounds, and power-rate limits.
package battery

import "fmt"

// Physics constants for the reference home-battery installation.
const (
	CapacityKWh     = 13.5
	ChargeEff       = 0.96
	DischargeEff    = 0.96
	MinSOC          = 0.20
	MaxSOC          = 0.95
	MaxChargeKW     = 5.0
	MaxDischargeKW  = 5.0
	socToleranceAbs = 1e-3
)

// State is an immutable snapshot of the battery produced after every
// operation. A snapshot never changes when the owning Battery later mutates.
type State struct {
	ChargeKWh   float64
	CapacityKWh float64
}

// SOC returns the state of charge as a fraction of capacity.
func (s State) SOC() float64 {
	return s.ChargeKWh / s.CapacityKWh
}

// Params holds the physics tunables that used to be package constants.
// DefaultParams returns the frozen spec §3 values; config.Config overrides
// them when a deployment's installation differs from the reference one.
type Params struct {
	CapacityKWh    float64
	ChargeEff      float64
	DischargeEff   float64
	MinSOC         float64
	MaxSOC         float64
	MaxChargeKW    float64
	MaxDischargeKW float64
}

// DefaultParams returns the frozen physics constants (spec §3).
func DefaultParams() Params {
	return Params{
		CapacityKWh:    CapacityKWh,
		ChargeEff:      ChargeEff,
		DischargeEff:   DischargeEff,
		MinSOC:         MinSOC,
		MaxSOC:         MaxSOC,
		MaxChargeKW:    MaxChargeKW,
		MaxDischargeKW: MaxDischargeKW,
	}
}

// Battery is the mutable, single-owner energy store.
type Battery struct {
	params    Params
	chargeKWh float64
}

// New constructs a battery at the frozen default physics with the given
// capacity and initial SOC fraction.
func New(capacityKWh, initialSOC float64) (*Battery, error) {
	params := DefaultParams()
	params.CapacityKWh = capacityKWh
	return NewWithParams(params, initialSOC)
}

// NewWithParams constructs a battery using caller-supplied physics
// parameters, e.g. sourced from config.Config for a non-reference
// installation.
func NewWithParams(params Params, initialSOC float64) (*Battery, error) {
	if params.CapacityKWh <= 0 {
		return nil, fmt.Errorf("battery: capacity_kwh must be positive, got %v", params.CapacityKWh)
	}
	if initialSOC < 0 || initialSOC > 1 {
		return nil, fmt.Errorf("battery: initial_soc must be in [0,1], got %v", initialSOC)
	}
	b := &Battery{params: params}
	b.chargeKWh = clampToBounds(initialSOC*params.CapacityKWh, params)
	return b, nil
}

func clampToBounds(chargeKWh float64, params Params) float64 {
	lo := params.MinSOC * params.CapacityKWh
	hi := params.MaxSOC * params.CapacityKWh
	if chargeKWh < lo {
		return lo
	}
	if chargeKWh > hi {
		return hi
	}
	return chargeKWh
}

// Params returns the physics parameters this battery was constructed with.
func (b *Battery) Params() Params {
	return b.params
}

// Reset reassigns the battery to a new SOC fraction.
func (b *Battery) Reset(soc float64) error {
	if soc < 0 || soc > 1 {
		return fmt.Errorf("battery: reset soc must be in [0,1], got %v", soc)
	}
	b.chargeKWh = clampToBounds(soc*b.params.CapacityKWh, b.params)
	b.checkInvariant()
	return nil
}

// State returns a read-only snapshot of the battery's current level.
func (b *Battery) State() State {
	return State{ChargeKWh: b.chargeKWh, CapacityKWh: b.params.CapacityKWh}
}

// Charge attempts to store `available` kWh taken from the bus. It returns
// energyConsumed (the amount taken from the bus) and energyStored (the
// amount actually added to the cell, after efficiency loss).
func (b *Battery) Charge(available float64) (energyConsumed, energyStored float64) {
	if available <= 0 {
		return 0, 0
	}
	headroom := b.params.MaxSOC*b.params.CapacityKWh - b.chargeKWh
	maxConvertible := headroom / b.params.ChargeEff
	c := min3(available, maxConvertible, b.params.MaxChargeKW)
	if c < 0 {
		c = 0
	}
	stored := c * b.params.ChargeEff
	b.chargeKWh += stored
	b.checkInvariant()
	return c, stored
}

// Discharge attempts to deliver `demand` kWh to the bus. It returns
// energyDrawn (the amount removed from the cell) and energyDelivered (the
// amount actually delivered to the bus, after efficiency loss).
func (b *Battery) Discharge(demand float64) (energyDrawn, energyDelivered float64) {
	if demand <= 0 {
		return 0, 0
	}
	reserve := b.chargeKWh - b.params.MinSOC*b.params.CapacityKWh
	needed := demand / b.params.DischargeEff
	w := min3(needed, reserve, b.params.MaxDischargeKW)
	if w < 0 {
		w = 0
	}
	delivered := w * b.params.DischargeEff
	b.chargeKWh -= w
	b.checkInvariant()
	return w, delivered
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// checkInvariant panics if the SOC has drifted outside its bounds by more
// than the tolerance allowed for a physics bug (spec §7 NumericTolerance).
func (b *Battery) checkInvariant() {
	soc := b.chargeKWh / b.params.CapacityKWh
	if soc < b.params.MinSOC-socToleranceAbs || soc > b.params.MaxSOC+socToleranceAbs {
		panic(fmt.Sprintf("battery: soc %.6f drifted outside [%.2f, %.2f]", soc, b.params.MinSOC, b.params.MaxSOC))
	}
}
