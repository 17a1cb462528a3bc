package market

import (
	"testing"
	"time"

	"github.com/devskill-org/dayahead-planner/entsoe"
)

func TestPriceAtRejectsOutOfRangeHour(t *testing.T) {
	p := New(Config{ReferenceDate: time.Now()})
	if _, err := p.PriceAt(24); err == nil {
		t.Error("expected error for hour 24")
	}
}

func TestPriceAtUsesCachedDocument(t *testing.T) {
	ref := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start := ref
	doc := &entsoe.PublicationMarketDocument{
		TimeSeries: []entsoe.TimeSeries{{
			Period: entsoe.Period{
				TimeInterval: entsoe.TimeInterval{Start: start, End: start.Add(24 * time.Hour)},
				Resolution:   time.Hour,
				Points:       []entsoe.Point{{Position: 13, PriceAmount: 42.5}},
			},
		}},
	}
	p := &Provider{cfg: Config{ReferenceDate: ref, Location: time.UTC}, doc: doc}
	price, err := p.PriceAt(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 42.5 {
		t.Errorf("price = %v, want 42.5", price)
	}
}
