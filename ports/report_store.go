package ports

import (
	"context"

	"goagree/domain/agreement"
	"goagree/domain/core"
)

// ReportStore persists computed agreement reports
type ReportStore interface {
	Save(ctx context.Context, rep *agreement.Report) error
	// Get returns core.ErrNotFound when no report has the given ID
	Get(ctx context.Context, id core.AnalysisID) (*agreement.Report, error)
	// List returns the most recent reports first
	List(ctx context.Context, limit int) ([]agreement.ReportSummary, error)
}
