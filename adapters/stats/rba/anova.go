package rba

import (
	"math"

	"goagree/domain/agreement"
	"goagree/domain/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneWayANOVA decomposes the differences by participant. Callers guarantee
// at least two participants and N > m.
func OneWayANOVA(order []core.ParticipantID, groups map[core.ParticipantID][]float64, grandMean float64) agreement.ANOVATable {
	n := 0
	withinTerms := make([]float64, 0)
	betweenTerms := make([]float64, 0, len(order))

	for _, p := range order {
		g := groups[p]
		n += len(g)
		mean := floats.SumCompensated(g) / float64(len(g))
		for _, v := range g {
			d := v - mean
			withinTerms = append(withinTerms, d*d)
		}
		d := mean - grandMean
		betweenTerms = append(betweenTerms, float64(len(g))*d*d)
	}

	table := agreement.ANOVATable{
		SSBetween: floats.SumCompensated(betweenTerms),
		SSWithin:  floats.SumCompensated(withinTerms),
		DFBetween: len(order) - 1,
		DFWithin:  n - len(order),
	}
	table.MSBetween = table.SSBetween / float64(table.DFBetween)
	table.MSWithin = table.SSWithin / float64(table.DFWithin)
	table.F, table.PValue = fTest(table.MSBetween, table.MSWithin, table.DFBetween, table.DFWithin)

	return table
}

// fTest returns the F statistic and its upper-tail probability
func fTest(msBetween, msWithin float64, dfBetween, dfWithin int) (float64, float64) {
	if msWithin == 0 {
		if msBetween == 0 {
			return 0, 1
		}
		return math.Inf(1), 0
	}
	f := msBetween / msWithin
	dist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}
	return f, dist.Survival(f)
}
