package milp

import (
	"github.com/lukpank/go-glpk/glpk"
)

// solve hands the model to GLPK's branch-and-bound MIP solver and extracts
// the resulting column values. It returns (result, suboptimal, error),
// where suboptimal is set whenever the solver found a usable incumbent but
// could not certify it optimal (time limit, gap not closed).
func solve(m model, opts Options) (solvedModel, bool, error) {
	lp := glpk.New()
	defer lp.Delete()

	lp.SetProbName("dayahead-battery-schedule")
	lp.SetObjDir(glpk.MIN)

	lp.AddRows(m.numRows)
	lp.AddCols(m.numCols)

	for j := 1; j <= m.numCols; j++ {
		lp.SetColBnds(j, glpk.DB, m.colLB[j], m.colUB[j])
		lp.SetObjCoef(j, m.objCoef[j])
		if m.binary[j] {
			lp.SetColKind(j, glpk.BV)
		} else {
			lp.SetColKind(j, glpk.CV)
		}
	}

	for i, row := range m.rows {
		rowIdx := i + 1
		switch row.kind {
		case rowFixed:
			lp.SetRowBnds(rowIdx, glpk.FX, row.lb, row.ub)
		case rowUpper:
			lp.SetRowBnds(rowIdx, glpk.UP, 0, row.ub)
		}
		lp.SetMatRow(rowIdx, row.ind, row.val)
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MSG_OFF)
	if opts.TimeLimitSec > 0 {
		iocp.SetTmLim(int(opts.TimeLimitSec * 1000))
	}
	iocp.SetMipGap(opts.MIPGap)

	if err := lp.Intopt(iocp); err != nil {
		return solvedModel{}, false, ErrSolverFailure
	}

	status := lp.MipStatus()
	if status != glpk.OPT && status != glpk.FEAS {
		return solvedModel{}, false, ErrSolverFailure
	}

	var s solvedModel
	s.objective = lp.MipObjVal()
	for t := 0; t < 24; t++ {
		s.chargeRate[t] = lp.MipColVal(col(t, varCR))
		s.dischargeRate[t] = lp.MipColVal(col(t, varDR))
		s.gridImport[t] = lp.MipColVal(col(t, varImp))
		s.gridExport[t] = lp.MipColVal(col(t, varExp))
		s.chargeLevel[t] = lp.MipColVal(col(t, varLvl))
	}

	return s, status != glpk.OPT, nil
}
