package rba

import (
	"math"

	"goagree/domain/agreement"
	"goagree/domain/core"

	"gonum.org/v1/gonum/floats"
)

// Analyzer computes repeated-measures Bland-Altman agreement statistics.
// It holds no state and is safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer creates a new repeated-measures Bland-Altman analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Name returns the analyzer name
func (a *Analyzer) Name() string {
	return "repeated_measures_bland_altman"
}

// Description returns a human-readable description
func (a *Analyzer) Description() string {
	return "Bias and 95% limits of agreement with a variance-components SD for unequal repeated measures"
}

// Compute runs the analysis on one dataset
func (a *Analyzer) Compute(data *agreement.Dataset) (*agreement.RBAResult, error) {
	return Compute(data)
}

// Compute derives bias, the repeated-measures SD, the limits of agreement and
// the CommonSense coverage for a long-format dataset of differences.
//
// Every participant counts towards m, including those with a single
// observation; they add nothing to the within-participant sum of squares.
// Inputs where every participant has exactly one observation are rejected
// with core.ErrDegenerateData.
func Compute(data *agreement.Dataset) (*agreement.RBAResult, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	order, groups := data.Groups()
	m := len(order)
	n := data.Len()
	if m < 2 {
		return nil, core.NewTooFewParticipantsError(m)
	}
	if n == m {
		return nil, core.NewDegenerateDataError(m)
	}

	obsv := make(map[core.ParticipantID]int, m)
	for _, p := range order {
		obsv[p] = len(groups[p])
	}

	values := data.Values()
	bias := floats.SumCompensated(values) / float64(n)

	table := OneWayANOVA(order, groups, bias)
	components := decompose(table, obsv, n)
	sd := math.Sqrt(components.TotalVariance)

	lower := bias - agreement.LOAMultiplier*sd
	upper := bias + agreement.LOAMultiplier*sd

	participants, err := SummarizeParticipants(order, groups)
	if err != nil {
		return nil, err
	}

	return &agreement.RBAResult{
		Data:             data,
		Obsv:             obsv,
		ParticipantOrder: order,
		Bias:             bias,
		SD:               sd,
		LOALower:         lower,
		LOAUpper:         upper,
		CommonSense:      Coverage(values, lower, upper),
		Components:       components,
		ANOVA:            table,
		Participants:     participants,
		Fingerprint:      fingerprint(data),
	}, nil
}

// validate rejects empty datasets, blank participant IDs and non-finite differences
func validate(data *agreement.Dataset) error {
	if data.Len() == 0 {
		return core.ErrEmptyDataset
	}
	for i, o := range data.Observations {
		if o.Participant == "" {
			return core.NewEmptyParticipantError(i + 1)
		}
		if math.IsNaN(o.Difference) || math.IsInf(o.Difference, 0) {
			return core.NewNonFiniteError(i+1, o.Participant, o.Difference)
		}
	}
	return nil
}

// N0 is the unbalanced-design coefficient (N - Σn_i²/N) / (m - 1). For a
// balanced design with k repeats it equals k.
func N0(obsv map[core.ParticipantID]int, n int) float64 {
	squares := make([]float64, 0, len(obsv))
	for _, c := range obsv {
		squares = append(squares, float64(c)*float64(c))
	}
	total := float64(n)
	return (total - floats.SumCompensated(squares)/total) / float64(len(obsv)-1)
}

// decompose turns the mean squares into variance components. A negative
// between-participant estimate is clamped to zero.
func decompose(table agreement.ANOVATable, obsv map[core.ParticipantID]int, n int) agreement.VarianceComponents {
	n0 := N0(obsv, n)
	raw := (table.MSBetween - table.MSWithin) / n0

	between := raw
	clamped := false
	if between < 0 {
		between = 0
		clamped = true
	}

	return agreement.VarianceComponents{
		WithinVariance:     table.MSWithin,
		BetweenVariance:    between,
		RawBetweenVariance: raw,
		TotalVariance:      between + table.MSWithin,
		N0:                 n0,
		BetweenClamped:     clamped,
	}
}

// Coverage returns the fraction of values inside [lower, upper], bounds included
func Coverage(values []float64, lower, upper float64) float64 {
	if len(values) == 0 {
		return 0
	}
	inside := 0
	for _, v := range values {
		if v >= lower && v <= upper {
			inside++
		}
	}
	return float64(inside) / float64(len(values))
}

func fingerprint(data *agreement.Dataset) core.DatasetHash {
	h := core.NewDatasetHasher()
	for _, o := range data.Observations {
		h.Add(o.Participant, o.Difference)
	}
	return h.Sum()
}
