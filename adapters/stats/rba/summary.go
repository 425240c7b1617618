package rba

import (
	"fmt"

	"goagree/domain/agreement"
	"goagree/domain/core"

	"github.com/montanaflynn/stats"
)

// SummarizeParticipants describes each participant's differences in order
func SummarizeParticipants(order []core.ParticipantID, groups map[core.ParticipantID][]float64) ([]agreement.ParticipantSummary, error) {
	summaries := make([]agreement.ParticipantSummary, 0, len(order))
	for _, p := range order {
		g := groups[p]

		mean, err := stats.Mean(g)
		if err != nil {
			return nil, fmt.Errorf("participant %s mean: %w", p, err)
		}
		min, err := stats.Min(g)
		if err != nil {
			return nil, fmt.Errorf("participant %s min: %w", p, err)
		}
		max, err := stats.Max(g)
		if err != nil {
			return nil, fmt.Errorf("participant %s max: %w", p, err)
		}

		sd := 0.0
		if len(g) > 1 {
			sd, err = stats.StandardDeviationSample(g)
			if err != nil {
				return nil, fmt.Errorf("participant %s std dev: %w", p, err)
			}
		}

		summaries = append(summaries, agreement.ParticipantSummary{
			Participant: p,
			Count:       len(g),
			Mean:        mean,
			StdDev:      sd,
			Min:         min,
			Max:         max,
		})
	}
	return summaries, nil
}
