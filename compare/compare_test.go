package compare

import (
	"testing"

	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/forecast"
	"github.com/devskill-org/dayahead-planner/milp"
)

// Invariant 7: MILP optimality, up to the configured MIP gap.
func TestMILPNeverWorseThanRuleBeyondGap(t *testing.T) {
	req := Request{
		EnvConfig: environment.Config{
			Season:  forecast.Summer,
			Weather: forecast.Sunny,
			DayType: environment.Weekday,
			Month:   6,
		},
		Seed:        42,
		InitialSOC:  0.3,
		MILPOptions: milp.DefaultOptions(),
	}
	res, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gap := 0.01 * absFloat(res.RuleResult.TotalCost)
	if res.MILPResult.TotalCost > res.RuleResult.TotalCost+gap {
		t.Errorf("milp total_cost %v exceeds rule total_cost %v by more than the mip gap", res.MILPResult.TotalCost, res.RuleResult.TotalCost)
	}
}

func TestDifferentDecisionsCountsMismatches(t *testing.T) {
	req := Request{
		EnvConfig: environment.Config{
			Season:  forecast.Summer,
			Weather: forecast.Sunny,
			DayType: environment.Weekday,
			Month:   6,
		},
		Seed:        7,
		InitialSOC:  0.3,
		MILPOptions: milp.DefaultOptions(),
	}
	res, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0
	for h := 0; h < 24; h++ {
		if res.RuleResult.Hourly[h].Action != res.MILPResult.Hourly[h].Action {
			want++
		}
	}
	if res.DifferentDecisions != want {
		t.Errorf("different_decisions = %d, want %d", res.DifferentDecisions, want)
	}
}
