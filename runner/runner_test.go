package runner

import (
	"math"
	"testing"

	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/forecast"
)

func baseRequest(mode Mode) Request {
	return Request{
		EnvConfig: environment.Config{
			Season:  forecast.Summer,
			Weather: forecast.Sunny,
			DayType: environment.Weekday,
			Month:   6,
		},
		Seed:       42,
		Mode:       mode,
		InitialSOC: 0.5,
	}
}

// Invariant 1: exactly 24 hours, in ascending order.
func TestRunProduces24HoursInOrder(t *testing.T) {
	res, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for h, report := range res.Hourly {
		if report.Hour != h {
			t.Errorf("hourly[%d].Hour = %d", h, report.Hour)
		}
	}
}

// Invariant 2: battery level always within bounds.
func TestRunKeepsBatteryWithinBounds(t *testing.T) {
	res, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo := battery.MinSOC*battery.CapacityKWh - 1e-3
	hi := battery.MaxSOC*battery.CapacityKWh + 1e-3
	for _, report := range res.Hourly {
		if report.BatteryLevelKWh < lo || report.BatteryLevelKWh > hi {
			t.Errorf("hour %d: battery level %v out of bounds", report.Hour, report.BatteryLevelKWh)
		}
	}
}

// Invariant 3: grid import/export non-negative, at most one positive.
func TestRunGridFlowsAreSane(t *testing.T) {
	res, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range res.Hourly {
		if r.GridImportKWh < 0 || r.GridExportKWh < 0 {
			t.Errorf("hour %d: negative grid flow", r.Hour)
		}
		if r.GridImportKWh > 0 && r.GridExportKWh > 0 {
			t.Errorf("hour %d: both import and export positive", r.Hour)
		}
	}
}

// Invariant 6: determinism.
func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Error("identical request must yield byte-identical result")
	}
}

// Invariant 5: no energy creation over the full day (1% tolerance).
func TestRunEnergyBalanceHolds(t *testing.T) {
	res, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	initial := 0.5 * battery.CapacityKWh
	final := res.Hourly[23].BatteryLevelKWh
	lhs := res.TotalConsumptionKWh + res.TotalGridExportKWh + (final - initial)
	rhs := res.TotalSolarKWh + res.TotalGridImportKWh
	tolerance := 0.01 * math.Max(rhs, 1)
	if lhs > rhs+tolerance {
		t.Errorf("energy balance violated: lhs=%v rhs=%v", lhs, rhs)
	}
}

func TestRunTotalSavingsIsSumOfPerHourSavings(t *testing.T) {
	res, err := Run(baseRequest(RuleMode))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, r := range res.Hourly {
		sum += r.Savings
	}
	if math.Abs(sum-res.TotalSavings) > 1e-9 {
		t.Errorf("total_savings = %v, sum of per-hour savings = %v", res.TotalSavings, sum)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	req := baseRequest(Mode("bogus"))
	if _, err := Run(req); err == nil {
		t.Error("expected error for unknown mode")
	}
}
