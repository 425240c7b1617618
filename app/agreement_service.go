package app

import (
	"context"
	"fmt"
	"time"

	"goagree/adapters/excel"
	"goagree/domain/agreement"
	"goagree/domain/core"
	"goagree/internal"
	"goagree/internal/errors"
	"goagree/internal/synthetic"
	"goagree/ports"

	"golang.org/x/sync/errgroup"
)

// AgreementService loads long-format differences and runs the agreement analysis
type AgreementService struct {
	computer ports.AgreementComputer
	store    ports.ReportStore // optional
	workers  int
	logger   *internal.Logger
}

// AnalyzeRequest describes a single analysis. An empty File selects the
// synthetic demo dataset described by Demo.
type AnalyzeRequest struct {
	File   string
	Reader excel.ReaderConfig
	Demo   synthetic.Config
}

// NewAgreementService creates the service; workers bounds AnalyzeColumns fan-out
func NewAgreementService(computer ports.AgreementComputer, workers int) *AgreementService {
	if workers <= 0 {
		workers = 1
	}
	return &AgreementService{
		computer: computer,
		workers:  workers,
		logger:   internal.DefaultLogger.With("component", "AgreementService"),
	}
}

// WithStore makes the service persist every report it computes
func (s *AgreementService) WithStore(store ports.ReportStore) *AgreementService {
	s.store = store
	return s
}

// Analyze loads one dataset and computes its agreement report
func (s *AgreementService) Analyze(ctx context.Context, req AnalyzeRequest) (*agreement.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ds     *agreement.Dataset
		column string
		err    error
	)
	if req.File == "" {
		ds, err = synthetic.Generate(req.Demo)
		if err != nil {
			return nil, errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), "failed to generate demo dataset")
		}
		ds.Source = "demo " + ds.Source
		s.logger.Info("no data file given, using %s (%d rows)", ds.Source, ds.Len())
	} else {
		data, err := excel.NewDataReader(req.File, req.Reader.Sheet).ReadData()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", req.File)
		}
		column = req.Reader.ValueColumn
		ds, err = excel.ToDataset(data, req.File, req.Reader.ParticipantColumn, column)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", req.File)
		}
	}

	rep, err := s.compute(ds, column)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// AnalyzeDataset computes the report for observations that are already in memory
func (s *AgreementService) AnalyzeDataset(ctx context.Context, ds *agreement.Dataset, column string) (*agreement.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep, err := s.compute(ds, column)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// AnalyzeColumns computes one report per value column of a wide file, for
// example one column per joint angle. Reports follow the order of columns;
// an empty list analyzes every column except the participant column.
func (s *AgreementService) AnalyzeColumns(ctx context.Context, file string, reader excel.ReaderConfig, columns []string) ([]*agreement.Report, error) {
	data, err := excel.NewDataReader(file, reader.Sheet).ReadData()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", file)
	}
	if len(columns) == 0 {
		columns = excel.ValueColumns(data, reader.ParticipantColumn)
	}
	if len(columns) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no value columns besides %q", file, reader.ParticipantColumn))
	}

	reports := make([]*agreement.Report, len(columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, column := range columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := excel.ToDataset(data, file, reader.ParticipantColumn, column)
			if err != nil {
				return errors.Wrapf(err, "column %s", column)
			}
			rep, err := s.compute(ds, column)
			if err != nil {
				return errors.Wrapf(err, "column %s", column)
			}
			reports[i] = rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, reports...); err != nil {
		return nil, err
	}
	return reports, nil
}

// History lists stored reports, newest first
func (s *AgreementService) History(ctx context.Context, limit int) ([]agreement.ReportSummary, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no report store configured")
	}
	return s.store.List(ctx, limit)
}

// Lookup loads one stored report
func (s *AgreementService) Lookup(ctx context.Context, id core.AnalysisID) (*agreement.Report, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no report store configured")
	}
	rep, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load report %s", id)
	}
	return rep, nil
}

func (s *AgreementService) persist(ctx context.Context, reports ...*agreement.Report) error {
	if s.store == nil {
		return nil
	}
	for _, rep := range reports {
		if err := s.store.Save(ctx, rep); err != nil {
			return err
		}
		s.logger.Debug("stored report %s (%s)", rep.ID, rep.Source)
	}
	return nil
}

func (s *AgreementService) compute(ds *agreement.Dataset, column string) (*agreement.Report, error) {
	start := time.Now()
	result, err := s.computer.Compute(ds)
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed on %s", s.computer.Name(), ds.Source)
	}

	s.logger.Debug("%s on %s: %d participants, %d rows in %s",
		s.computer.Name(), ds.Source, result.ParticipantCount(), ds.Len(), time.Since(start))
	if result.Components.BetweenClamped {
		s.logger.Warn("%s: negative between-participant variance (%.6g) clamped to 0",
			ds.Source, result.Components.RawBetweenVariance)
	}

	return agreement.NewReport(ds.Source, column, result), nil
}
