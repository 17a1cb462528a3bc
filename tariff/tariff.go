// Package tariff provides the time-of-use price table and consumption
// period classification that the environment generator and simulation
// runner consult for every hour.
package tariff

import "fmt"

// Period classifies an hour into one of the four consumption periods.
type Period int

const (
	Night Period = iota
	Morning
	Day
	Evening
)

func (p Period) String() string {
	switch p {
	case Night:
		return "night"
	case Morning:
		return "morning"
	case Day:
		return "day"
	case Evening:
		return "evening"
	default:
		return fmt.Sprintf("period(%d)", int(p))
	}
}

// Price currency/kWh constants (spec §3, frozen table).
const (
	PeakPrice   = 6.78
	NightPrice  = 4.80
	NormalPrice = 5.65
	ExportPrice = 4.00
)

var peakHours = map[int]bool{18: true, 19: true, 20: true, 21: true}
var nightHours = map[int]bool{23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true}

// Provider supplies the grid price for a given hour. StaticTable is the
// default implementation backing the frozen TOU table; market.Provider is
// an alternate, dynamically-priced implementation.
type Provider interface {
	PriceAt(hour int) (float64, error)
}

// StaticTable implements Provider over a time-of-use table. The zero value
// uses the frozen spec §3 table; NewStaticTable builds one from a
// deployment's configured prices (config.Config's Peak/Night/Normal/Export
// fields) when they differ from the reference installation.
type StaticTable struct {
	Peak   float64
	Night  float64
	Normal float64
	Export float64
}

// NewStaticTable builds a StaticTable from explicit prices.
func NewStaticTable(peak, night, normal, export float64) StaticTable {
	return StaticTable{Peak: peak, Night: night, Normal: normal, Export: export}
}

// PriceAt returns the TOU price for the given hour of day.
func (t StaticTable) PriceAt(hour int) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("tariff: hour %d out of range [0,23]", hour)
	}
	peak, night, normal := t.Peak, t.Night, t.Normal
	if peak == 0 {
		peak = PeakPrice
	}
	if night == 0 {
		night = NightPrice
	}
	if normal == 0 {
		normal = NormalPrice
	}
	switch {
	case peakHours[hour]:
		return peak, nil
	case nightHours[hour]:
		return night, nil
	default:
		return normal, nil
	}
}

// ExportPriceOrDefault returns t.Export, falling back to the frozen spec §3
// export price when the table was built with the zero value.
func (t StaticTable) ExportPriceOrDefault() float64 {
	if t.Export == 0 {
		return ExportPrice
	}
	return t.Export
}

// PriceOf returns the frozen TOU price for an hour, ignoring provider
// indirection. Callers that just need the static table use this directly.
func PriceOf(hour int) float64 {
	switch {
	case peakHours[hour]:
		return PeakPrice
	case nightHours[hour]:
		return NightPrice
	default:
		return NormalPrice
	}
}

// IsPeak reports whether hour falls in the peak-tariff window {18..21}.
func IsPeak(hour int) bool {
	return peakHours[hour]
}

// PeriodOf classifies an hour into a consumption period.
func PeriodOf(hour int) Period {
	switch {
	case nightHours[hour]:
		return Night
	case hour >= 7 && hour < 9:
		return Morning
	case hour >= 9 && hour < 18:
		return Day
	default:
		return Evening
	}
}
