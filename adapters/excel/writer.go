package excel

import (
	"goagree/domain/agreement"
	"goagree/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	participantsSheet = "Participants"
)

var summaryHeaders = []interface{}{
	"analysis_id", "source", "column", "participants", "observations",
	"bias", "sd", "loa_lower", "loa_upper", "common_sense",
	"ms_between", "ms_within", "n0", "between_variance", "between_clamped", "f", "p_value",
}

var participantHeaders = []interface{}{
	"column", "participant", "count", "mean", "std_dev", "min", "max",
}

// WriteReportWorkbook exports one Summary row per report and one
// Participants row per participant and report.
func WriteReportWorkbook(path string, reports []*agreement.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return errors.IOError("failed to create summary sheet", err)
	}
	if _, err := f.NewSheet(participantsSheet); err != nil {
		return errors.IOError("failed to create participants sheet", err)
	}

	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeaders); err != nil {
		return errors.IOError("failed to write summary header", err)
	}
	if err := f.SetSheetRow(participantsSheet, "A1", &participantHeaders); err != nil {
		return errors.IOError("failed to write participants header", err)
	}

	pRow := 2
	for i, rep := range reports {
		res := rep.Result
		row := []interface{}{
			rep.ID.String(), rep.Source, rep.Column, res.ParticipantCount(), res.TotalObservations(),
			res.Bias, res.SD, res.LOALower, res.LOAUpper, res.CommonSense,
			res.ANOVA.MSBetween, res.ANOVA.MSWithin, res.Components.N0,
			res.Components.BetweenVariance, res.Components.BetweenClamped, res.ANOVA.F, res.ANOVA.PValue,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return errors.IOError("failed to write summary row", err)
		}

		for _, p := range res.Participants {
			prow := []interface{}{rep.Column, p.Participant.String(), p.Count, p.Mean, p.StdDev, p.Min, p.Max}
			cell, err := excelize.CoordinatesToCellName(1, pRow)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(participantsSheet, cell, &prow); err != nil {
				return errors.IOError("failed to write participant row", err)
			}
			pRow++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError("failed to save workbook", err)
	}
	return nil
}
