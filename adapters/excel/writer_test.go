package excel

import (
	"path/filepath"
	"testing"

	"goagree/domain/agreement"
	"goagree/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteReportWorkbook(t *testing.T) {
	result := &agreement.RBAResult{
		Obsv:     map[core.ParticipantID]int{"A": 2, "B": 1},
		Bias:     3,
		SD:       1.5,
		LOALower: 0.06,
		LOAUpper: 5.94,
		Participants: []agreement.ParticipantSummary{
			{Participant: "A", Count: 2, Mean: 1.5},
			{Participant: "B", Count: 1, Mean: 4},
		},
	}
	report := agreement.NewReport("ankle.csv", "variables", result)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReportWorkbook(path, []*agreement.Report{report}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "bias", summary[0][5])
	assert.Equal(t, "ankle.csv", summary[1][1])
	assert.Equal(t, "2", summary[1][3])
	assert.Equal(t, "3", summary[1][4])

	participants, err := f.GetRows("Participants")
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, "A", participants[1][1])
	assert.Equal(t, "B", participants[2][1])
}
