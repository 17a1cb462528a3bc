package battery

import "testing"

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(0, 0.5); err == nil {
		t.Error("expected error for non-positive capacity")
	}
	if _, err := New(CapacityKWh, 1.5); err == nil {
		t.Error("expected error for out-of-range initial soc")
	}
}

func TestChargeZeroOrNegativeIsNoop(t *testing.T) {
	b, _ := New(CapacityKWh, 0.5)
	before := b.State()
	c, s := b.Charge(0)
	if c != 0 || s != 0 {
		t.Errorf("expected (0,0), got (%v,%v)", c, s)
	}
	if b.State() != before {
		t.Error("state must not change on a no-op charge")
	}
}

// S4 - battery cannot overcharge.
func TestChargeCapsAtMaxSOC(t *testing.T) {
	b, _ := New(CapacityKWh, 0.94)
	consumed, stored := b.Charge(100.0)
	if got := b.State().SOC(); got > MaxSOC+1e-9 {
		t.Errorf("soc %v exceeds MAX_SOC %v", got, MaxSOC)
	}
	if consumed >= 100.0 {
		t.Errorf("expected consumed < 100, got %v", consumed)
	}
	if want := consumed * ChargeEff; abs(stored-want) > 1e-9 {
		t.Errorf("stored = %v, want %v", stored, want)
	}
}

// S5 - battery cannot over-discharge.
func TestDischargeCapsAtMinSOC(t *testing.T) {
	b, _ := New(CapacityKWh, 0.21)
	_, delivered := b.Discharge(100.0)
	if got := b.State().SOC(); got < MinSOC-1e-9 {
		t.Errorf("soc %v below MIN_SOC %v", got, MinSOC)
	}
	if delivered >= 100.0 {
		t.Errorf("expected delivered < 100, got %v", delivered)
	}
}

func TestRoundTripIsLossy(t *testing.T) {
	b, _ := New(CapacityKWh, 0.5)
	start := b.State().SOC()
	b.Charge(2.0)
	b.Discharge(2.0 * ChargeEff)
	if end := b.State().SOC(); end >= start {
		t.Errorf("round trip should leave soc strictly below start: start=%v end=%v", start, end)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	b, _ := New(CapacityKWh, 0.5)
	snap := b.State()
	want := 0.5 * CapacityKWh
	b.Charge(1.0)
	if snap.ChargeKWh == b.State().ChargeKWh {
		t.Fatal("sanity: charge should have changed battery state")
	}
	if snap.ChargeKWh != want {
		t.Errorf("snap.ChargeKWh = %v after mutation, want it still %v (value at the time it was taken)", snap.ChargeKWh, want)
	}
}

func TestDischargeDrawnNeverLessThanDelivered(t *testing.T) {
	b, _ := New(CapacityKWh, 0.9)
	drawn, delivered := b.Discharge(3.0)
	if delivered > drawn {
		t.Errorf("delivered %v must not exceed drawn %v", delivered, drawn)
	}
}

func TestChargeStoredNeverExceedsConsumed(t *testing.T) {
	b, _ := New(CapacityKWh, 0.3)
	consumed, stored := b.Charge(3.0)
	if stored > consumed {
		t.Errorf("stored %v must not exceed consumed %v", stored, consumed)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
