// Package compare runs both engines over an identical set of environment
// states and reports how much the MILP engine improves on the rule engine.
package compare

import (
	"fmt"
	"math"

	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/milp"
	"github.com/devskill-org/dayahead-planner/ruleengine"
	"github.com/devskill-org/dayahead-planner/runner"
)

// Result is the dual-engine comparison response (spec §4.6/§6).
type Result struct {
	RuleResult          runner.SimulationResult `json:"rule_result"`
	MILPResult          runner.SimulationResult `json:"milp_result"`
	CostSavings         float64                 `json:"cost_savings"`
	ImprovementPct      float64                 `json:"improvement_pct"`
	DifferentDecisions  int                     `json:"different_decisions"`
}

// Request configures one comparison run.
type Request struct {
	EnvConfig      environment.Config
	Seed           int64
	InitialSOC     float64
	MILPOptions    milp.Options
	BatteryParams  battery.Params
	RuleEngine     ruleengine.Engine
	ExportPriceKWh float64
}

// Run executes both engines from identical initial conditions and compares
// them. It returns an error only if either simulation fails outright.
func Run(req Request) (Result, error) {
	rule, err := runner.Run(runner.Request{
		EnvConfig:      req.EnvConfig,
		Seed:           req.Seed,
		Mode:           runner.RuleMode,
		InitialSOC:     req.InitialSOC,
		BatteryParams:  req.BatteryParams,
		RuleEngine:     req.RuleEngine,
		ExportPriceKWh: req.ExportPriceKWh,
	})
	if err != nil {
		return Result{}, fmt.Errorf("compare: rule engine: %w", err)
	}

	milpRes, err := runner.Run(runner.Request{
		EnvConfig:      req.EnvConfig,
		Seed:           req.Seed,
		Mode:           runner.MILPMode,
		InitialSOC:     req.InitialSOC,
		MILPOptions:    req.MILPOptions,
		BatteryParams:  req.BatteryParams,
		ExportPriceKWh: req.ExportPriceKWh,
	})
	if err != nil {
		return Result{}, fmt.Errorf("compare: milp engine: %w", err)
	}

	different := 0
	for h := 0; h < 24; h++ {
		if rule.Hourly[h].Action != milpRes.Hourly[h].Action {
			different++
		}
	}

	costSavings := rule.TotalCost - milpRes.TotalCost
	var improvementPct float64
	if rule.TotalCost != 0 {
		improvementPct = costSavings / absFloat(rule.TotalCost) * 100
	}

	return Result{
		RuleResult:         rule,
		MILPResult:         milpRes,
		CostSavings:        costSavings,
		ImprovementPct:     improvementPct,
		DifferentDecisions: different,
	}, nil
}

// Round rounds both engines' results and the comparison's own currency/
// percentage fields to the same precision as SimulationResult.Round.
func (r Result) Round() Result {
	r.RuleResult = r.RuleResult.Round()
	r.MILPResult = r.MILPResult.Round()
	r.CostSavings = roundTo(r.CostSavings, 3)
	r.ImprovementPct = roundTo(r.ImprovementPct, 2)
	return r
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
