package agreement

import (
	"encoding/json"
	"math"

	"goagree/domain/core"
)

// LOAMultiplier is the two-sided 95% normal quantile used for the limits of
// agreement. It is fixed to the published value and is not configurable.
const LOAMultiplier = 1.96

// Observation is one long-format row: the difference between two measurement
// methods recorded for a participant.
type Observation struct {
	Participant core.ParticipantID `json:"participant"`
	Difference  float64            `json:"difference"`
}

// Dataset is an ordered sequence of observations, grouped implicitly by participant
type Dataset struct {
	Source       string        `json:"source,omitempty"`
	Observations []Observation `json:"observations"`
}

// NewDataset creates a dataset from observations
func NewDataset(source string, observations []Observation) *Dataset {
	return &Dataset{Source: source, Observations: observations}
}

// Add appends an observation
func (d *Dataset) Add(participant core.ParticipantID, difference float64) {
	d.Observations = append(d.Observations, Observation{Participant: participant, Difference: difference})
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Observations)
}

// Values returns the difference column in row order
func (d *Dataset) Values() []float64 {
	values := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		values[i] = o.Difference
	}
	return values
}

// Groups splits the differences by participant. The returned order is the
// order in which participants first appear.
func (d *Dataset) Groups() ([]core.ParticipantID, map[core.ParticipantID][]float64) {
	order := make([]core.ParticipantID, 0)
	groups := make(map[core.ParticipantID][]float64)
	for _, o := range d.Observations {
		if _, seen := groups[o.Participant]; !seen {
			order = append(order, o.Participant)
		}
		groups[o.Participant] = append(groups[o.Participant], o.Difference)
	}
	return order, groups
}

// ParticipantSummary describes one participant's repeated observations
type ParticipantSummary struct {
	Participant core.ParticipantID `json:"participant"`
	Count       int                `json:"count"`
	Mean        float64            `json:"mean"`
	StdDev      float64            `json:"std_dev"` // sample SD, 0 for a single observation
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
}

// ANOVATable is the one-way ANOVA of differences on participant
type ANOVATable struct {
	SSBetween float64 `json:"ss_between"`
	SSWithin  float64 `json:"ss_within"`
	DFBetween int     `json:"df_between"`
	DFWithin  int     `json:"df_within"`
	MSBetween float64 `json:"ms_between"`
	MSWithin  float64 `json:"ms_within"`
	F         float64 `json:"f"`
	PValue    float64 `json:"p_value"`
}

// MarshalJSON writes a non-finite F (zero within-participant spread) as null
func (t ANOVATable) MarshalJSON() ([]byte, error) {
	type plain ANOVATable
	out := struct {
		plain
		F *float64 `json:"f"`
	}{plain: plain(t)}
	if !math.IsInf(t.F, 0) && !math.IsNaN(t.F) {
		f := t.F
		out.F = &f
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null F back as +Inf
func (t *ANOVATable) UnmarshalJSON(data []byte) error {
	type plain ANOVATable
	var in struct {
		plain
		F *float64 `json:"f"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = ANOVATable(in.plain)
	if in.F != nil {
		t.F = *in.F
	} else {
		t.F = math.Inf(1)
	}
	return nil
}

// VarianceComponents is the method-of-moments split of the repeated-measures
// variance into within- and between-participant parts.
type VarianceComponents struct {
	WithinVariance     float64 `json:"within_variance"`
	BetweenVariance    float64 `json:"between_variance"`     // after clamping to >= 0
	RawBetweenVariance float64 `json:"raw_between_variance"` // (MSb - MSw) / n0, may be negative
	TotalVariance      float64 `json:"total_variance"`
	N0                 float64 `json:"n0"`
	BetweenClamped     bool    `json:"between_clamped"`
}

// RBAResult holds the repeated-measures Bland-Altman statistics for one dataset.
// It is built once by the analyzer and must not be mutated afterwards.
type RBAResult struct {
	Data             *Dataset                   `json:"-"`
	Obsv             map[core.ParticipantID]int `json:"obsv"`
	ParticipantOrder []core.ParticipantID       `json:"participant_order"`
	Bias             float64                    `json:"bias"`
	SD               float64                    `json:"sd"`
	LOALower         float64                    `json:"loa_lower"`
	LOAUpper         float64                    `json:"loa_upper"`
	CommonSense      float64                    `json:"common_sense"`

	Components   VarianceComponents   `json:"components"`
	ANOVA        ANOVATable           `json:"anova"`
	Participants []ParticipantSummary `json:"participants"`
	Fingerprint  core.DatasetHash     `json:"fingerprint"`
}

// TotalObservations returns N, the sum of per-participant counts
func (r *RBAResult) TotalObservations() int {
	total := 0
	for _, n := range r.Obsv {
		total += n
	}
	return total
}

// ParticipantCount returns m
func (r *RBAResult) ParticipantCount() int {
	return len(r.Obsv)
}

// Contains reports whether a difference lies inside the limits of agreement
func (r *RBAResult) Contains(difference float64) bool {
	return difference >= r.LOALower && difference <= r.LOAUpper
}

// Report wraps a result with the metadata a caller needs to present it
type Report struct {
	ID          core.AnalysisID `json:"id"`
	Source      string          `json:"source"`
	Column      string          `json:"column,omitempty"`
	GeneratedAt core.Timestamp  `json:"generated_at"`
	Result      *RBAResult      `json:"result"`
}

// NewReport creates a report for a computed result
func NewReport(source, column string, result *RBAResult) *Report {
	return &Report{
		ID:          core.NewAnalysisID(),
		Source:      source,
		Column:      column,
		GeneratedAt: core.Now(),
		Result:      result,
	}
}

// ReportSummary is the headline of a stored report, enough to list history
// without decoding the full result.
type ReportSummary struct {
	ID             core.AnalysisID  `json:"id"`
	Source         string           `json:"source"`
	Column         string           `json:"column,omitempty"`
	GeneratedAt    core.Timestamp   `json:"generated_at"`
	Fingerprint    core.DatasetHash `json:"fingerprint"`
	Participants   int              `json:"participants"`
	Observations   int              `json:"observations"`
	Bias           float64          `json:"bias"`
	SD             float64          `json:"sd"`
	LOALower       float64          `json:"loa_lower"`
	LOAUpper       float64          `json:"loa_upper"`
	CommonSense    float64          `json:"common_sense"`
	BetweenClamped bool             `json:"between_clamped"`
}

// Summarize returns the headline of a report
func (r *Report) Summarize() ReportSummary {
	return ReportSummary{
		ID:             r.ID,
		Source:         r.Source,
		Column:         r.Column,
		GeneratedAt:    r.GeneratedAt,
		Fingerprint:    r.Result.Fingerprint,
		Participants:   r.Result.ParticipantCount(),
		Observations:   r.Result.TotalObservations(),
		Bias:           r.Result.Bias,
		SD:             r.Result.SD,
		LOALower:       r.Result.LOALower,
		LOAUpper:       r.Result.LOAUpper,
		CommonSense:    r.Result.CommonSense,
		BetweenClamped: r.Result.Components.BetweenClamped,
	}
}
