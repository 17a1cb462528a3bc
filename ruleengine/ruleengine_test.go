package ruleengine

import (
	"testing"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
)

func snapAt(soc float64) battery.State {
	b, _ := battery.New(battery.CapacityKWh, soc)
	return b.State()
}

// S1 - surplus with room charges.
func TestSurplusWithRoomCharges(t *testing.T) {
	env := environment.State{Hour: 12, SolarKWh: 10.0, LoadKWh: 3.0, Price: 5.65}
	got := New().Decide(env, snapAt(0.50))
	if got != action.ChargeBattery {
		t.Errorf("got %v, want CHARGE_BATTERY", got)
	}
}

// S2 - surplus at cap exports.
func TestSurplusAtCapExports(t *testing.T) {
	env := environment.State{Hour: 12, SolarKWh: 10.0, LoadKWh: 3.0, Price: 5.65}
	got := New().Decide(env, snapAt(0.96))
	if got != action.SellToGrid {
		t.Errorf("got %v, want SELL_TO_GRID", got)
	}
}

// S3 - peak deficit discharges, or falls to grid below threshold.
func TestPeakDeficitDischarges(t *testing.T) {
	env := environment.State{Hour: 19, SolarKWh: 2.0, LoadKWh: 8.0, Price: 6.78}
	if got := New().Decide(env, snapAt(0.50)); got != action.DischargeBattery {
		t.Errorf("soc=0.50: got %v, want DISCHARGE_BATTERY", got)
	}
	if got := New().Decide(env, snapAt(0.20)); got != action.UseGrid {
		t.Errorf("soc=0.20: got %v, want USE_GRID", got)
	}
}

func TestNeverEmitsIdle(t *testing.T) {
	engine := New()
	for hour := 0; hour < 24; hour++ {
		for _, soc := range []float64{0.20, 0.25, 0.40, 0.60, 0.95} {
			for _, net := range []float64{-5, 0, 5} {
				env := environment.State{Hour: hour, SolarKWh: net, LoadKWh: 0, Price: 5.0}
				if got := engine.Decide(env, snapAt(soc)); got == action.Idle {
					t.Errorf("hour=%d soc=%v net=%v: rule engine emitted IDLE", hour, soc, net)
				}
			}
		}
	}
}

func TestDecideIsPureAndDoesNotMutateSnapshot(t *testing.T) {
	env := environment.State{Hour: 19, SolarKWh: 2.0, LoadKWh: 8.0, Price: 6.78}
	snap := snapAt(0.5)
	a1 := New().Decide(env, snap)
	a2 := New().Decide(env, snap)
	if a1 != a2 {
		t.Errorf("decide not pure: %v != %v", a1, a2)
	}
	if snap.ChargeKWh != 0.5*battery.CapacityKWh {
		t.Error("snapshot must be unaffected by decide")
	}
}

func TestShouldConserve(t *testing.T) {
	if !ShouldConserve(21, snapAt(0.25), true) {
		t.Error("expected conserve: evening, low soc, cloudy tomorrow")
	}
	if ShouldConserve(21, snapAt(0.25), false) {
		t.Error("expected no conserve: tomorrow not cloudy")
	}
	// battery.New clamps to MinSOC, so the 0.10 snapshot is built directly.
	critical := battery.State{ChargeKWh: 0.10 * battery.CapacityKWh, CapacityKWh: battery.CapacityKWh}
	if !ShouldConserve(10, critical, false) {
		t.Error("expected conserve: critically low soc regardless of hour")
	}
}
