package sun

import (
	"testing"
	"time"
)

func TestAltitudeFactorZeroAtMidnight(t *testing.T) {
	midnight := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if f := AltitudeFactor(midnight, 56.9496, 24.1052); f != 0 {
		t.Errorf("altitude factor at midnight = %v, want 0", f)
	}
}

func TestWindowInDaylightExcludesNight(t *testing.T) {
	day := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	w := WindowAt(day, 56.9496, 24.1052)
	midnight := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	if w.InDaylight(midnight) {
		t.Error("midnight should not be in daylight window")
	}
	noon := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	if !w.InDaylight(noon) {
		t.Error("noon should be in daylight window at midsummer")
	}
}
