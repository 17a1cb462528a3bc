package telemetry

import "testing"

// socFraction mirrors the conversion ReadSOC performs, exercised directly
// since PlantReader requires a live Modbus connection to construct.
func socFraction(essSOCPercent float64) (float64, bool) {
	soc := essSOCPercent / 100.0
	return soc, soc >= 0 && soc <= 1
}

func TestSOCFractionConversion(t *testing.T) {
	soc, ok := socFraction(62.5)
	if !ok || soc != 0.625 {
		t.Errorf("socFraction(62.5) = %v, %v", soc, ok)
	}
}

func TestSOCFractionRejectsOutOfRange(t *testing.T) {
	if _, ok := socFraction(150); ok {
		t.Error("150% SOC should be implausible")
	}
}
