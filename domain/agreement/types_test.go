package agreement

import (
	"encoding/json"
	"math"
	"testing"

	"goagree/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestDataset_GroupsKeepFirstAppearanceOrder(t *testing.T) {
	ds := NewDataset("test", nil)
	ds.Add("B", 3)
	ds.Add("A", 1)
	ds.Add("B", 5)
	ds.Add("C", 4)
	ds.Add("A", 2)

	order, groups := ds.Groups()

	assert.Equal(t, []core.ParticipantID{"B", "A", "C"}, order)
	assert.Equal(t, []float64{3, 5}, groups["B"])
	assert.Equal(t, []float64{1, 2}, groups["A"])
	assert.Equal(t, []float64{4}, groups["C"])
	assert.Equal(t, []float64{3, 1, 5, 4, 2}, ds.Values())
	assert.Equal(t, 5, ds.Len())
}

func TestRBAResult_Contains(t *testing.T) {
	r := &RBAResult{LOALower: -1, LOAUpper: 1}

	assert.True(t, r.Contains(-1))
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(0))
	assert.False(t, r.Contains(1.0000001))
}

func TestNilDatasetLen(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.Len())
}

func TestANOVATable_MarshalInfiniteF(t *testing.T) {
	data, err := json.Marshal(ANOVATable{F: math.Inf(1), DFBetween: 2})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"f":null`)
	assert.Contains(t, string(data), `"df_between":2`)

	data, err = json.Marshal(ANOVATable{F: 3})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"f":3`)
}

func TestANOVATable_UnmarshalNullF(t *testing.T) {
	var table ANOVATable
	assert.NoError(t, json.Unmarshal([]byte(`{"f":null,"ms_between":2,"df_within":3}`), &table))
	assert.True(t, math.IsInf(table.F, 1))
	assert.Equal(t, 2.0, table.MSBetween)
	assert.Equal(t, 3, table.DFWithin)

	assert.NoError(t, json.Unmarshal([]byte(`{"f":0.5}`), &table))
	assert.Equal(t, 0.5, table.F)
}

func TestReport_Summarize(t *testing.T) {
	rep := NewReport("joints.csv", "ankle", &RBAResult{
		Obsv:        map[core.ParticipantID]int{"A": 2, "B": 2, "C": 1},
		Bias:        3,
		SD:          1.5,
		LOALower:    0.06,
		LOAUpper:    5.94,
		CommonSense: 1,
		Components:  VarianceComponents{BetweenClamped: true},
		Fingerprint: "abc",
	})

	s := rep.Summarize()

	assert.Equal(t, rep.ID, s.ID)
	assert.Equal(t, "ankle", s.Column)
	assert.Equal(t, 3, s.Participants)
	assert.Equal(t, 5, s.Observations)
	assert.Equal(t, 3.0, s.Bias)
	assert.True(t, s.BetweenClamped)
	assert.Equal(t, core.DatasetHash("abc"), s.Fingerprint)
}
