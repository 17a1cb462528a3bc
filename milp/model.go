package milp

import (
	"github.com/devskill-org/dayahead-planner/battery"
	"github.com/devskill-org/dayahead-planner/environment"
)

// Column layout: six variables per hour, 1-indexed to match the GLPK C
// matrix convention (column/row index 0 is a placeholder, never used).
const varsPerHour = 6

const (
	varCR = iota // cr[t]: kWh charged from the bus
	varDR        // dr[t]: kWh drawn from the cell
	varImp       // imp[t]: grid import kWh
	varExp       // exp[t]: grid export kWh
	varLvl       // charge_lvl[t]: battery level at end of hour t (advisory)
	varZ         // z[t]: 1 = charging, 0 = discharging
)

func col(t, v int) int { return t*varsPerHour + v + 1 }

// rowKind mirrors the handful of GLPK bound types this model needs.
type rowKind int

const (
	rowFixed rowKind = iota // lb == ub
	rowUpper                // <= ub
)

type modelRow struct {
	ind  []int32
	val  []float64
	kind rowKind
	lb   float64
	ub   float64
}

type model struct {
	numCols int
	numRows int
	objCoef []float64 // 1-indexed, length numCols+1
	colLB   []float64
	colUB   []float64
	binary  []bool
	rows    []modelRow
}

// buildModel constructs the sparse LP/MIP matrix for the 24-hour horizon
// per spec §4.4: energy balance, battery dynamics, and big-M
// complementarity, for every hour. params/exportPrice parameterize the
// installation physics and export tariff, defaulting to the frozen spec
// values when the caller passes battery.DefaultParams()/tariff.ExportPrice.
func buildModel(envs [24]environment.State, snap battery.State, params battery.Params, exportPrice float64) model {
	numCols := 24 * varsPerHour
	m := model{
		numCols: numCols,
		objCoef: make([]float64, numCols+1),
		colLB:   make([]float64, numCols+1),
		colUB:   make([]float64, numCols+1),
		binary:  make([]bool, numCols+1),
	}

	capacity := snap.CapacityKWh
	minLvl := params.MinSOC * capacity
	maxLvl := params.MaxSOC * capacity
	bigM := params.MaxChargeKW
	if params.MaxDischargeKW > bigM {
		bigM = params.MaxDischargeKW
	}

	for t := 0; t < 24; t++ {
		m.colLB[col(t, varCR)], m.colUB[col(t, varCR)] = 0, params.MaxChargeKW
		m.colLB[col(t, varDR)], m.colUB[col(t, varDR)] = 0, params.MaxDischargeKW
		m.colLB[col(t, varImp)], m.colUB[col(t, varImp)] = 0, 1e6
		m.colLB[col(t, varExp)], m.colUB[col(t, varExp)] = 0, 1e6
		m.colLB[col(t, varLvl)], m.colUB[col(t, varLvl)] = minLvl, maxLvl
		m.colLB[col(t, varZ)], m.colUB[col(t, varZ)] = 0, 1
		m.binary[col(t, varZ)] = true

		m.objCoef[col(t, varImp)] = envs[t].Price
		m.objCoef[col(t, varExp)] = -exportPrice

		// Energy balance: solar + dr*eff + imp - load - cr - exp = 0
		m.rows = append(m.rows, modelRow{
			ind: []int32{0, int32(col(t, varDR)), int32(col(t, varImp)), int32(col(t, varCR)), int32(col(t, varExp))},
			val: []float64{0, params.DischargeEff, 1, -1, -1},
			kind: rowFixed,
			lb:   envs[t].LoadKWh - envs[t].SolarKWh,
			ub:   envs[t].LoadKWh - envs[t].SolarKWh,
		})

		// Battery dynamics.
		if t == 0 {
			m.rows = append(m.rows, modelRow{
				ind:  []int32{0, int32(col(t, varLvl)), int32(col(t, varCR)), int32(col(t, varDR))},
				val:  []float64{0, 1, -params.ChargeEff, 1},
				kind: rowFixed,
				lb:   snap.ChargeKWh,
				ub:   snap.ChargeKWh,
			})
		} else {
			m.rows = append(m.rows, modelRow{
				ind:  []int32{0, int32(col(t, varLvl)), int32(col(t-1, varLvl)), int32(col(t, varCR)), int32(col(t, varDR))},
				val:  []float64{0, 1, -1, -params.ChargeEff, 1},
				kind: rowFixed,
				lb:   0,
				ub:   0,
			})
		}

		// Complementarity: cr <= M*z  =>  cr - M*z <= 0
		m.rows = append(m.rows, modelRow{
			ind:  []int32{0, int32(col(t, varCR)), int32(col(t, varZ))},
			val:  []float64{0, 1, -bigM},
			kind: rowUpper,
			ub:   0,
		})
		// dr <= M*(1-z)  =>  dr + M*z <= M
		m.rows = append(m.rows, modelRow{
			ind:  []int32{0, int32(col(t, varDR)), int32(col(t, varZ))},
			val:  []float64{0, 1, bigM},
			kind: rowUpper,
			ub:   bigM,
		})
	}

	m.numRows = len(m.rows)
	return m
}

type solvedModel struct {
	chargeRate    [24]float64
	dischargeRate [24]float64
	gridImport    [24]float64
	gridExport    [24]float64
	chargeLevel   [24]float64
	objective     float64
}
