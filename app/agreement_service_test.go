package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"goagree/adapters/excel"
	"goagree/adapters/stats/rba"
	"goagree/domain/agreement"
	"goagree/domain/core"
	"goagree/internal/errors"
	"goagree/internal/synthetic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockComputer struct {
	mock.Mock
}

func (m *MockComputer) Name() string { return "mock" }

func (m *MockComputer) Compute(data *agreement.Dataset) (*agreement.RBAResult, error) {
	args := m.Called(data)
	res, _ := args.Get(0).(*agreement.RBAResult)
	return res, args.Error(1)
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joints.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const jointsCSV = `participants,ankle,knee
A,1,10
A,2,12
B,3,9
B,5,11
C,4,10
`

func TestAnalyze_File(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 2)
	reader := excel.DefaultReaderConfig()
	reader.ValueColumn = "ankle"

	rep, err := svc.Analyze(context.Background(), AnalyzeRequest{File: writeCSV(t, jointsCSV), Reader: reader})
	require.NoError(t, err)

	assert.False(t, rep.ID.String() == "")
	assert.Equal(t, "ankle", rep.Column)
	assert.InDelta(t, 3.0, rep.Result.Bias, 1e-12)
	assert.InDelta(t, 1.6770509831248424, rep.Result.SD, 1e-12)
}

func TestAnalyze_DemoWhenNoFile(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 1)

	rep, err := svc.Analyze(context.Background(), AnalyzeRequest{Demo: synthetic.DefaultConfig()})
	require.NoError(t, err)

	assert.Contains(t, rep.Source, "demo synthetic(seed=42)")
	assert.Equal(t, synthetic.DefaultConfig().Participants, rep.Result.ParticipantCount())
}

func TestAnalyze_MissingColumnIsNotFound(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 1)
	reader := excel.DefaultReaderConfig()

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{File: writeCSV(t, jointsCSV), Reader: reader})
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestAnalyze_CanceledContext(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, AnalyzeRequest{Demo: synthetic.DefaultConfig()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeColumns_OrderFollowsColumns(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 4)

	reports, err := svc.AnalyzeColumns(context.Background(), writeCSV(t, jointsCSV), excel.DefaultReaderConfig(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "ankle", reports[0].Column)
	assert.Equal(t, "knee", reports[1].Column)
	assert.InDelta(t, 3.0, reports[0].Result.Bias, 1e-12)
	assert.InDelta(t, 10.4, reports[1].Result.Bias, 1e-12)
}

func TestAnalyzeColumns_PropagatesDomainError(t *testing.T) {
	computer := new(MockComputer)
	computer.On("Compute", mock.Anything).Return(nil, core.NewDegenerateDataError(3))

	svc := NewAgreementService(computer, 2)
	_, err := svc.AnalyzeColumns(context.Background(), writeCSV(t, jointsCSV), excel.DefaultReaderConfig(), []string{"knee"})

	require.Error(t, err)
	assert.True(t, core.IsDegenerateDataError(err))
	assert.Equal(t, errors.CodeDegenerateData, errors.GetCode(err))
	assert.Equal(t, 3, errors.ExitCode(err))
	computer.AssertNumberOfCalls(t, "Compute", 1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, rep *agreement.Report) error {
	return m.Called(ctx, rep).Error(0)
}

func (m *MockStore) Get(ctx context.Context, id core.AnalysisID) (*agreement.Report, error) {
	args := m.Called(ctx, id)
	rep, _ := args.Get(0).(*agreement.Report)
	return rep, args.Error(1)
}

func (m *MockStore) List(ctx context.Context, limit int) ([]agreement.ReportSummary, error) {
	args := m.Called(ctx, limit)
	summaries, _ := args.Get(0).([]agreement.ReportSummary)
	return summaries, args.Error(1)
}

func TestAnalyzeColumns_PersistsEveryReport(t *testing.T) {
	store := new(MockStore)
	store.On("Save", mock.Anything, mock.AnythingOfType("*agreement.Report")).Return(nil)

	svc := NewAgreementService(rba.NewAnalyzer(), 2).WithStore(store)
	reports, err := svc.AnalyzeColumns(context.Background(), writeCSV(t, jointsCSV), excel.DefaultReaderConfig(), nil)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	store.AssertNumberOfCalls(t, "Save", 2)
}

func TestAnalyzeDataset_StoreFailureIsReturned(t *testing.T) {
	store := new(MockStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.IOError("disk full", nil))

	ds := agreement.NewDataset("api", nil)
	ds.Add("A", 1)
	ds.Add("A", 2)
	ds.Add("B", 3)
	ds.Add("B", 5)

	svc := NewAgreementService(rba.NewAnalyzer(), 1).WithStore(store)
	_, err := svc.AnalyzeDataset(context.Background(), ds, "")

	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}

func TestHistory_WithoutStore(t *testing.T) {
	svc := NewAgreementService(rba.NewAnalyzer(), 1)

	_, err := svc.History(context.Background(), 10)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = svc.Lookup(context.Background(), "x")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLookup_MissingReport(t *testing.T) {
	store := new(MockStore)
	store.On("Get", mock.Anything, core.AnalysisID("x")).Return(nil, core.NewNotFoundError("report", "x"))

	svc := NewAgreementService(rba.NewAnalyzer(), 1).WithStore(store)
	_, err := svc.Lookup(context.Background(), "x")

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Equal(t, 2, errors.ExitCode(err))
}
