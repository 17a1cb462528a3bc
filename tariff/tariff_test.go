package tariff

import "testing"

func TestPriceOfMatchesFrozenTable(t *testing.T) {
	cases := map[int]float64{
		18: PeakPrice, 19: PeakPrice, 20: PeakPrice, 21: PeakPrice,
		23: NightPrice, 0: NightPrice, 6: NightPrice,
		7: NormalPrice, 12: NormalPrice, 22: NormalPrice,
	}
	for hour, want := range cases {
		if got := PriceOf(hour); got != want {
			t.Errorf("PriceOf(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestIsPeak(t *testing.T) {
	for h := 0; h < 24; h++ {
		want := h >= 18 && h <= 21
		if got := IsPeak(h); got != want {
			t.Errorf("IsPeak(%d) = %v, want %v", h, got, want)
		}
	}
}

func TestStaticTableRejectsOutOfRangeHour(t *testing.T) {
	var p StaticTable
	if _, err := p.PriceAt(24); err == nil {
		t.Error("expected error for hour 24")
	}
	if _, err := p.PriceAt(-1); err == nil {
		t.Error("expected error for hour -1")
	}
}
