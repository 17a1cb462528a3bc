// Package milp builds and solves the 24-hour mixed-integer linear program
// that finds a globally cost-optimal battery schedule, then decodes the
// solver's continuous solution back into the same Action type the rule
// engine emits (the two engines' sequences can differ). Variable names and the TimeSlot /
// ControlDecision-shaped result mirror the teacher's dynamic-programming
// MPC controller; the solve itself is delegated to a real branch-and-bound
// MILP solver instead of a discretized-SOC heuristic.
package milp

import (
	"errors"
	"fmt"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
)

// ErrSolverFailure indicates the solver returned no usable incumbent at
// all (spec §7 SolverFailure) — a failed simulation, not a degraded one.
var ErrSolverFailure = errors.New("milp: solver returned no incumbent")

const decodeEpsilon = 0.01 // kWh, spec §4.4 action decoding tolerance

// Options configures the solve. TimeLimitSec <= 0 means unlimited.
type Options struct {
	TimeLimitSec float64
	MIPGap       float64 // default 0.01 (1%) if zero
}

// DefaultOptions returns the spec's default solver policy.
func DefaultOptions() Options {
	return Options{TimeLimitSec: 0, MIPGap: 0.01}
}

// Decision is one hour's slice of the optimized plan, named and shaped
// after the teacher's ControlDecision. runner turns it into HourlyReport,
// which is what persistence and streaming consume.
type Decision struct {
	Hour             int
	Action           action.Action
	BatteryCharge    float64 // cr[t], kWh charged from bus
	BatteryDischarge float64 // dr[t], kWh drawn from cell
	GridImport       float64
	GridExport       float64
	BatteryLevelKWh  float64 // charge_lvl[t], the LP's own (advisory) trajectory
}

// Result is the decoded 24-hour plan plus solver diagnostics.
type Result struct {
	Decisions   [24]Decision
	ObjectiveValue float64
	Suboptimal  bool // spec §7 SolverSuboptimal: incumbent found but status != optimal
}

// Optimize builds and solves the MILP over the given 24 environment states
// and the battery's current snapshot, returning the optimal 24-hour action
// sequence. It never mutates battery or env. params/exportPrice parameterize
// the installation physics and export tariff; pass battery.DefaultParams()
// and tariff.ExportPrice for the reference installation.
func Optimize(envs [24]environment.State, snap battery.State, params battery.Params, exportPrice float64, opts Options) (Result, error) {
	if opts.MIPGap <= 0 {
		opts.MIPGap = DefaultOptions().MIPGap
	}

	model := buildModel(envs, snap, params, exportPrice)
	solved, suboptimal, err := solve(model, opts)
	if err != nil {
		return Result{}, fmt.Errorf("milp: %w", err)
	}

	var result Result
	result.Suboptimal = suboptimal
	result.ObjectiveValue = solved.objective
	for t := 0; t < 24; t++ {
		result.Decisions[t] = decode(t, envs[t], solved)
	}
	return result, nil
}

// decode applies the spec §4.4 decoding order: charge, then discharge,
// then export, then import, else idle. The order matters — a period with
// both a tiny charge and a tiny export must decode as charging.
func decode(t int, env environment.State, s solvedModel) Decision {
	cr := s.chargeRate[t]
	dr := s.dischargeRate[t]
	imp := s.gridImport[t]
	exp := s.gridExport[t]

	d := Decision{
		Hour:             t,
		BatteryCharge:    cr,
		BatteryDischarge: dr,
		GridImport:       imp,
		GridExport:       exp,
		BatteryLevelKWh:  s.chargeLevel[t],
	}

	switch {
	case cr > decodeEpsilon:
		d.Action = action.ChargeBattery
	case dr > decodeEpsilon:
		d.Action = action.DischargeBattery
	case exp > decodeEpsilon:
		d.Action = action.SellToGrid
	case imp > decodeEpsilon:
		d.Action = action.UseGrid
	default:
		d.Action = action.Idle
	}
	return d
}
