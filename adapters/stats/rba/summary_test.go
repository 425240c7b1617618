package rba

import (
	"testing"

	"goagree/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeParticipants(t *testing.T) {
	order, groups := scenarioDataset().Groups()

	summaries, err := SummarizeParticipants(order, groups)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, core.ParticipantID("A"), summaries[0].Participant)
	assert.Equal(t, 2, summaries[0].Count)
	assert.InDelta(t, 1.5, summaries[0].Mean, tol)
	assert.InDelta(t, 0.7071067811865476, summaries[0].StdDev, 1e-12)

	assert.InDelta(t, 4.0, summaries[1].Mean, tol)
	assert.Equal(t, 3.0, summaries[1].Min)
	assert.Equal(t, 5.0, summaries[1].Max)

	// single observation has no spread
	assert.Equal(t, 1, summaries[2].Count)
	assert.Equal(t, 0.0, summaries[2].StdDev)
}
