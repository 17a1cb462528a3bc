// Package runner orchestrates a full 24-hour simulation: it advances an
// owned battery hour by hour under either the rule engine or the MILP
// engine, producing one HourlyReport per hour plus aggregates.
package runner

import (
	"fmt"
	"log"
	"math"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/milp"
	"github.com/devskill-org/dayahead-planner/ruleengine"
	"github.com/devskill-org/dayahead-planner/tariff"
)

// Mode selects which engine drives the schedule.
type Mode string

const (
	RuleMode Mode = "rule"
	MILPMode Mode = "milp"
)

// HourlyReport is the immutable per-hour result of applying one action.
type HourlyReport struct {
	Hour            int     `json:"hour"`
	SolarKWh        float64 `json:"solar_kwh"`
	LoadKWh         float64 `json:"load_kwh"`
	BatteryLevelKWh float64 `json:"battery_level_kwh"`
	BatterySOC      float64 `json:"battery_soc"`
	GridImportKWh   float64 `json:"grid_import_kwh"`
	GridExportKWh   float64 `json:"grid_export_kwh"`
	NetEnergyKWh    float64 `json:"net_energy_kwh"`
	Action          action.Action `json:"action"`
	Price           float64       `json:"price"`
	Cost            float64       `json:"cost"`
	Savings         float64       `json:"savings"`
}

// SimulationResult is the ordered 24-hour report plus day aggregates.
type SimulationResult struct {
	Hourly            [24]HourlyReport `json:"hourly"`
	TotalSolarKWh     float64          `json:"total_solar_kwh"`
	TotalConsumptionKWh float64        `json:"total_consumption_kwh"`
	TotalGridImportKWh float64         `json:"total_grid_import_kwh"`
	TotalGridExportKWh float64         `json:"total_grid_export_kwh"`
	TotalCost         float64          `json:"total_cost"`
	TotalSavings      float64          `json:"total_savings"`
	Seed              int64            `json:"seed"`
	Suboptimal        bool             `json:"suboptimal,omitempty"`
}

// InitialSOCSource is an optional live-telemetry override for the starting
// SOC, e.g. a Modbus reader against the physical plant.
type InitialSOCSource interface {
	ReadSOC() (float64, error)
}

// Request bundles everything Run needs to produce a SimulationResult.
type Request struct {
	EnvConfig      environment.Config
	Seed           int64
	Mode           Mode
	InitialSOC     float64 // used when SOCSource is nil or fails
	SOCSource      InitialSOCSource
	MILPOptions    milp.Options
	Logger         *log.Logger
	BatteryParams  battery.Params  // zero value means battery.DefaultParams()
	RuleEngine     ruleengine.Engine // zero value means ruleengine.New()'s thresholds
	ExportPriceKWh float64         // zero value means tariff.ExportPrice
}

// Run executes one full 24-hour simulation per spec §4.5.
func Run(req Request) (SimulationResult, error) {
	logger := req.Logger
	if logger == nil {
		logger = log.Default()
	}

	initialSOC := req.InitialSOC
	if req.SOCSource != nil {
		soc, err := req.SOCSource.ReadSOC()
		if err != nil {
			logger.Printf("runner: telemetry initial-soc read failed, falling back to %.2f: %v", initialSOC, err)
		} else {
			initialSOC = soc
		}
	}

	battParams := req.BatteryParams
	if battParams.CapacityKWh == 0 {
		battParams = battery.DefaultParams()
	}
	b, err := battery.NewWithParams(battParams, initialSOC)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("runner: %w", err)
	}

	exportPrice := req.ExportPriceKWh
	if exportPrice == 0 {
		exportPrice = tariff.ExportPrice
	}

	engine := req.RuleEngine
	if engine.MaxSOCThreshold == 0 {
		engine = ruleengine.New()
	}

	// The environment generator itself absorbs ForecastUnavailable (spec
	// §7) by falling back to the deterministic synth; any error returned
	// here is a genuine configuration problem (e.g. a failing tariff
	// provider) and is not swallowed.
	envs, err := environment.Generate24h(req.EnvConfig, req.Seed)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("runner: %w", err)
	}

	var actions [24]action.Action
	var suboptimal bool

	switch req.Mode {
	case MILPMode:
		// The MILP solves the whole day at once, so its decisions are fixed
		// up front; the per-hour loop below only needs to apply them.
		result, err := milp.Optimize(envs, b.State(), battParams, exportPrice, req.MILPOptions)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("runner: %w", err)
		}
		suboptimal = result.Suboptimal
		for t := 0; t < 24; t++ {
			actions[t] = result.Decisions[t].Action
		}
	case RuleMode, "":
		// Rule-mode decisions depend on the battery's live state, which only
		// the per-hour loop below updates (via step's Charge/Discharge
		// calls), so they are filled in there instead of here.
	default:
		return SimulationResult{}, fmt.Errorf("runner: unknown mode %q", req.Mode)
	}

	result := SimulationResult{Seed: req.Seed, Suboptimal: suboptimal}
	for t := 0; t < 24; t++ {
		if req.Mode == RuleMode || req.Mode == "" {
			actions[t] = engine.Decide(envs[t], b.State())
		}
		report := step(b, envs[t], actions[t], exportPrice)
		result.Hourly[t] = report
		result.TotalSolarKWh += report.SolarKWh
		result.TotalConsumptionKWh += report.LoadKWh
		result.TotalGridImportKWh += report.GridImportKWh
		result.TotalGridExportKWh += report.GridExportKWh
		result.TotalCost += report.Cost
		result.TotalSavings += report.Savings
	}

	return result, nil
}

// Round rounds every hourly report's energy fields to 2 decimals and its
// price/cost/savings fields to 3 decimals, and rounds the day aggregates the
// same way, matching spec §6's response-rounding contract.
func (r SimulationResult) Round() SimulationResult {
	for i := range r.Hourly {
		r.Hourly[i] = r.Hourly[i].round()
	}
	r.TotalSolarKWh = roundTo(r.TotalSolarKWh, 2)
	r.TotalConsumptionKWh = roundTo(r.TotalConsumptionKWh, 2)
	r.TotalGridImportKWh = roundTo(r.TotalGridImportKWh, 2)
	r.TotalGridExportKWh = roundTo(r.TotalGridExportKWh, 2)
	r.TotalCost = roundTo(r.TotalCost, 3)
	r.TotalSavings = roundTo(r.TotalSavings, 3)
	return r
}

func (h HourlyReport) round() HourlyReport {
	h.SolarKWh = roundTo(h.SolarKWh, 2)
	h.LoadKWh = roundTo(h.LoadKWh, 2)
	h.BatteryLevelKWh = roundTo(h.BatteryLevelKWh, 2)
	h.BatterySOC = roundTo(h.BatterySOC, 2)
	h.GridImportKWh = roundTo(h.GridImportKWh, 2)
	h.GridExportKWh = roundTo(h.GridExportKWh, 2)
	h.NetEnergyKWh = roundTo(h.NetEnergyKWh, 2)
	h.Price = roundTo(h.Price, 3)
	h.Cost = roundTo(h.Cost, 3)
	h.Savings = roundTo(h.Savings, 3)
	return h
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// step applies one action to the battery and produces the hour's report,
// per the apply mapping and cost/savings formulas of spec §4.5.
func step(b *battery.Battery, env environment.State, a action.Action, exportPrice float64) HourlyReport {
	net := env.SolarKWh - env.LoadKWh

	var gridImport, gridExport float64
	switch a {
	case action.ChargeBattery:
		if net > 0 {
			b.Charge(net)
		}
	case action.DischargeBattery:
		if net < 0 {
			_, delivered := b.Discharge(-net)
			gridImport = -net - delivered
		}
	case action.SellToGrid:
		if net > 0 {
			gridExport = net
		}
	case action.UseGrid:
		if net < 0 {
			gridImport = -net
		}
	case action.Idle:
		// no-op
	}

	snap := b.State()
	price := env.Price
	cost := gridImport*price - gridExport*exportPrice
	baselineCost := math.Max(0, -net) * price
	savings := baselineCost - cost

	return HourlyReport{
		Hour:            env.Hour,
		SolarKWh:        env.SolarKWh,
		LoadKWh:         env.LoadKWh,
		BatteryLevelKWh: snap.ChargeKWh,
		BatterySOC:      snap.SOC(),
		GridImportKWh:   gridImport,
		GridExportKWh:   gridExport,
		NetEnergyKWh:    net,
		Action:          a,
		Price:           price,
		Cost:            cost,
		Savings:         savings,
	}
}
