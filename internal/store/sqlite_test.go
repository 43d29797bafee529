package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbras/fatura-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRun(source string) *model.Run {
	return &model.Run{
		Source: source,
		Status: model.RunStatusOK,
		Record: &model.InvoiceRecord{
			ConsumerUnit: model.String("1012345678"),
			TotalDue:     model.Float(345.67),
			AutoDebit:    model.AutoDebitNo,
		},
		Report: &model.ScoreReport{
			Accuracy: 94.7,
			Matched:  18,
			Total:    19,
			Mismatches: []model.Mismatch{
				{Field: "total_a_pagar", Expected: 345.67, Got: 345.69},
			},
		},
		Accuracy: model.Float(94.7),
	}
}

func TestSQLite_SaveAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := testRun("invoice-01.pdf")
	require.NoError(t, st.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice-01.pdf", got.Source)
	assert.Equal(t, model.RunStatusOK, got.Status)
	require.NotNil(t, got.Record)
	require.NotNil(t, got.Record.ConsumerUnit)
	assert.Equal(t, "1012345678", *got.Record.ConsumerUnit)
	require.NotNil(t, got.Report)
	assert.Equal(t, 94.7, got.Report.Accuracy)
	require.NotNil(t, got.Accuracy)
	assert.Equal(t, 94.7, *got.Accuracy)
}

func TestSQLite_SaveRun_FailedWithoutRecord(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.Run{
		Source: "broken.pdf",
		Status: model.RunStatusFailed,
		Error:  "pdftext: not a decodable PDF",
	}
	require.NoError(t, st.SaveRun(ctx, run))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Nil(t, got.Record)
	assert.Nil(t, got.Report)
	assert.Nil(t, got.Accuracy)
	assert.Contains(t, got.Error, "not a decodable PDF")
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRun(ctx, testRun("a.pdf")))
	require.NoError(t, st.SaveRun(ctx, testRun("b.pdf")))
	require.NoError(t, st.SaveRun(ctx, &model.Run{
		Source: "c.pdf",
		Status: model.RunStatusFailed,
		Error:  "decode",
	}))

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "c.pdf", failed[0].Source)

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_ListRuns_FilterBySource(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRun(ctx, testRun("a.pdf")))
	require.NoError(t, st.SaveRun(ctx, testRun("b.pdf")))

	runs, err := st.ListRuns(ctx, RunFilter{Source: "b.pdf"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "b.pdf", runs[0].Source)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.SaveRun(ctx, testRun("x.pdf")))
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "open.db")
	st, err := Open(context.Background(), "sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	require.NoError(t, st.SaveRun(context.Background(), testRun("a.pdf")))
}
