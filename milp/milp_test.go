package milp

import (
	"testing"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
	"github.com/devskill-org/dayahead-planner/tariff"
)

// scenarioS6 builds the arbitrage scenario from spec §8 S6: cheap midday
// surplus, expensive evening deficit, initial SOC 0.30.
func scenarioS6() [24]environment.State {
	var envs [24]environment.State
	for h := 0; h < 24; h++ {
		switch {
		case h >= 8 && h <= 14:
			envs[h] = environment.State{Hour: h, SolarKWh: 10, LoadKWh: 3, Price: 0.12}
		case h >= 18 && h <= 21:
			envs[h] = environment.State{Hour: h, SolarKWh: 2, LoadKWh: 8, Price: 0.30}
		default:
			envs[h] = environment.State{Hour: h, SolarKWh: 5, LoadKWh: 4, Price: 0.18}
		}
	}
	return envs
}

func TestOptimizeDecodesEveningToDischargeOrGrid(t *testing.T) {
	b, _ := battery.New(battery.CapacityKWh, 0.30)
	result, err := Optimize(scenarioS6(), b.State(), battery.DefaultParams(), tariff.ExportPrice, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for h := 18; h <= 21; h++ {
		a := result.Decisions[h].Action
		if a != action.DischargeBattery && a != action.UseGrid {
			t.Errorf("hour %d: got %v, want DISCHARGE_BATTERY or USE_GRID", h, a)
		}
	}
}

func TestDecodeOrderingPrefersCharge(t *testing.T) {
	s := solvedModel{}
	s.chargeRate[0] = 0.02
	s.gridExport[0] = 0.015
	env := environment.State{Hour: 0, SolarKWh: 1, LoadKWh: 0.5}
	d := decode(0, env, s)
	if d.Action != action.ChargeBattery {
		t.Errorf("got %v, want CHARGE_BATTERY when both charge and export exceed epsilon", d.Action)
	}
}

func TestDecodeIdleBelowEpsilon(t *testing.T) {
	s := solvedModel{}
	env := environment.State{Hour: 0}
	d := decode(0, env, s)
	if d.Action != action.Idle {
		t.Errorf("got %v, want IDLE when all flows are zero", d.Action)
	}
}
