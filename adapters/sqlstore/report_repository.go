package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"goagree/domain/agreement"
	"goagree/domain/core"
	"goagree/internal/errors"
	"goagree/ports"

	"github.com/jmoiron/sqlx"
)

// Fixed-width UTC layout so that generated_at sorts lexically in both backends
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const summaryColumns = `id, source, column_name, generated_at, fingerprint, participants, observations,
	bias, sd, loa_lower, loa_upper, common_sense, between_clamped`

type reportRow struct {
	ID             string  `db:"id"`
	Source         string  `db:"source"`
	Column         string  `db:"column_name"`
	GeneratedAt    string  `db:"generated_at"`
	Fingerprint    string  `db:"fingerprint"`
	Participants   int     `db:"participants"`
	Observations   int     `db:"observations"`
	Bias           float64 `db:"bias"`
	SD             float64 `db:"sd"`
	LOALower       float64 `db:"loa_lower"`
	LOAUpper       float64 `db:"loa_upper"`
	CommonSense    float64 `db:"common_sense"`
	BetweenClamped bool    `db:"between_clamped"`
	Payload        string  `db:"payload"`
}

func (row reportRow) summary() (agreement.ReportSummary, error) {
	at, err := time.Parse(timeLayout, row.GeneratedAt)
	if err != nil {
		return agreement.ReportSummary{}, err
	}
	return agreement.ReportSummary{
		ID:             core.AnalysisID(row.ID),
		Source:         row.Source,
		Column:         row.Column,
		GeneratedAt:    core.NewTimestamp(at),
		Fingerprint:    core.DatasetHash(row.Fingerprint),
		Participants:   row.Participants,
		Observations:   row.Observations,
		Bias:           row.Bias,
		SD:             row.SD,
		LOALower:       row.LOALower,
		LOAUpper:       row.LOAUpper,
		CommonSense:    row.CommonSense,
		BetweenClamped: row.BetweenClamped,
	}, nil
}

// ReportRepositoryImpl implements ReportStore on SQLite or PostgreSQL
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a report repository on an open, migrated database
func NewReportRepository(db *sqlx.DB) ports.ReportStore {
	return &ReportRepositoryImpl{db: db}
}

// Save stores a report. The full result is kept as JSON next to the headline columns.
func (r *ReportRepositoryImpl) Save(ctx context.Context, rep *agreement.Report) error {
	payload, err := json.Marshal(rep.Result)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}

	s := rep.Summarize()
	row := reportRow{
		ID:             s.ID.String(),
		Source:         s.Source,
		Column:         s.Column,
		GeneratedAt:    s.GeneratedAt.Time().UTC().Format(timeLayout),
		Fingerprint:    s.Fingerprint.String(),
		Participants:   s.Participants,
		Observations:   s.Observations,
		Bias:           s.Bias,
		SD:             s.SD,
		LOALower:       s.LOALower,
		LOAUpper:       s.LOAUpper,
		CommonSense:    s.CommonSense,
		BetweenClamped: s.BetweenClamped,
		Payload:        string(payload),
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO agreement_reports (`+summaryColumns+`, payload)
		VALUES (:id, :source, :column_name, :generated_at, :fingerprint, :participants, :observations,
			:bias, :sd, :loa_lower, :loa_upper, :common_sense, :between_clamped, :payload)
	`, row)
	if err != nil {
		return errors.IOError("failed to save report "+row.ID, err)
	}
	return nil
}

// Get loads a stored report with its full result
func (r *ReportRepositoryImpl) Get(ctx context.Context, id core.AnalysisID) (*agreement.Report, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+summaryColumns+`, payload
		FROM agreement_reports
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("report", id.String())
	}
	if err != nil {
		return nil, errors.IOError("failed to load report "+id.String(), err)
	}

	s, err := row.summary()
	if err != nil {
		return nil, errors.Wrapf(err, "report %s has a malformed timestamp", row.ID)
	}
	var result agreement.RBAResult
	if err := json.Unmarshal([]byte(row.Payload), &result); err != nil {
		return nil, errors.Wrapf(err, "report %s has a malformed payload", row.ID)
	}

	return &agreement.Report{
		ID:          s.ID,
		Source:      s.Source,
		Column:      s.Column,
		GeneratedAt: s.GeneratedAt,
		Result:      &result,
	}, nil
}

// List returns report headlines, newest first. A non-positive limit returns all.
func (r *ReportRepositoryImpl) List(ctx context.Context, limit int) ([]agreement.ReportSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM agreement_reports
		ORDER BY generated_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.IOError("failed to list reports", err)
	}

	summaries := make([]agreement.ReportSummary, 0, len(rows))
	for _, row := range rows {
		s, err := row.summary()
		if err != nil {
			return nil, errors.Wrapf(err, "report %s has a malformed timestamp", row.ID)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
