package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbras/fatura-cli/internal/model"
)

func TestFindGold(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "invoice-01.pdf")
	gold := filepath.Join(dir, "invoice-01.gold.json")
	require.NoError(t, os.WriteFile(gold, []byte("{}"), 0o644))

	assert.Equal(t, gold, findGold(pdf))
	assert.Empty(t, findGold(filepath.Join(dir, "other.pdf")))
}

func TestFindGold_PrefersJSON(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.gold.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.gold.yaml"), []byte(""), 0o644))

	assert.Equal(t, filepath.Join(dir, "a.gold.json"), findGold(pdf))
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.PDF", "c.txt", "d.gold.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	pdfs, err := listPDFs(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.PDF"),
	}, pdfs)
}

func TestProcessInvoice_UndecodableFile(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("garbage"), 0o644))

	run := processInvoice(pdf)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, "broken.pdf", run.Source)
	assert.Contains(t, run.Error, "not a decodable PDF")
	assert.Nil(t, run.Record)
}

func TestWriteBatchReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	runs := []model.Run{
		{Source: "a.pdf", Status: model.RunStatusOK, Accuracy: model.Float(94.7),
			Report: &model.ScoreReport{Accuracy: 94.7, Matched: 18, Total: 19}},
		{Source: "b.pdf", Status: model.RunStatusFailed, Error: "decode"},
	}

	require.NoError(t, writeBatchReport(path, runs))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
