package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"goagree/adapters/stats/rba"
	"goagree/domain/agreement"
	"goagree/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *ReportRepositoryImpl {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(db).(*ReportRepositoryImpl)
}

func scenarioReport(t *testing.T, column string, at time.Time) *agreement.Report {
	t.Helper()
	ds := agreement.NewDataset("joints.csv", nil)
	ds.Add("A", 1)
	ds.Add("A", 2)
	ds.Add("B", 3)
	ds.Add("B", 5)
	ds.Add("C", 4)

	result, err := rba.Compute(ds)
	require.NoError(t, err)
	rep := agreement.NewReport(ds.Source, column, result)
	rep.GeneratedAt = core.NewTimestamp(at)
	return rep
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn, driver, source string
	}{
		{"postgres://u:p@localhost/rba", "postgres", "postgres://u:p@localhost/rba"},
		{"postgresql://localhost/rba", "postgres", "postgresql://localhost/rba"},
		{"sqlite://reports.db", "sqlite3", "reports.db"},
		{"reports.db", "sqlite3", "reports.db"},
	}
	for _, tt := range tests {
		driver, source := driverFor(tt.dsn)
		assert.Equal(t, tt.driver, driver, tt.dsn)
		assert.Equal(t, tt.source, source, tt.dsn)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}

func TestOpen_MigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), path)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}

func TestReportRepository_SaveAndGet(t *testing.T) {
	repo := openTestStore(t)
	ctx := context.Background()
	rep := scenarioReport(t, "ankle", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Save(ctx, rep))

	got, err := repo.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, "ankle", got.Column)
	assert.True(t, rep.GeneratedAt.Time().Equal(got.GeneratedAt.Time()))
	assert.InDelta(t, 3.0, got.Result.Bias, 1e-12)
	assert.InDelta(t, 1.6770509831248424, got.Result.SD, 1e-12)
	assert.Equal(t, rep.Result.ParticipantOrder, got.Result.ParticipantOrder)
	assert.Equal(t, rep.Result.Obsv, got.Result.Obsv)
	assert.Equal(t, rep.Result.Fingerprint, got.Result.Fingerprint)
	assert.Equal(t, rep.Result.ANOVA.MSWithin, got.Result.ANOVA.MSWithin)
}

func TestReportRepository_GetMissing(t *testing.T) {
	repo := openTestStore(t)

	_, err := repo.Get(context.Background(), core.AnalysisID("missing"))
	assert.True(t, core.IsNotFoundError(err))
}

func TestReportRepository_ListNewestFirst(t *testing.T) {
	repo := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := scenarioReport(t, "ankle", base)
	newer := scenarioReport(t, "knee", base.Add(1500*time.Millisecond))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
	assert.Equal(t, 3, all[0].Participants)
	assert.Equal(t, 5, all[0].Observations)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "knee", limited[0].Column)
}
