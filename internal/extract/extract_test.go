package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbras/fatura-cli/internal/layout"
	"github.com/solbras/fatura-cli/internal/model"
)

// frag builds a synthetic fragment with a width proportional to its text.
func frag(page int, text string, x, y float64) model.TextFragment {
	return model.TextFragment{Page: page, Text: text, X: x, Y: y, Width: float64(len(text)) * 5, Height: 10}
}

func docFrom(frags ...model.TextFragment) *layout.Document {
	return layout.NewDocument(frags, layout.DefaultLineTolerance)
}

func TestExtract_EndToEndMinimalInvoice(t *testing.T) {
	e := New(Config{})
	rec := e.Extract([]model.TextFragment{
		frag(1, "UNIDADE CONSUMIDORA 1012345678", 10, 700),
		frag(1, "VENCIMENTO 15/11/2024", 10, 680),
		frag(1, "TOTAL A PAGAR R$*** 345,67", 10, 660),
	})

	require.NotNil(t, rec.ConsumerUnit)
	assert.Equal(t, "1012345678", *rec.ConsumerUnit)
	require.NotNil(t, rec.DueDate)
	assert.Equal(t, "15/11/2024", *rec.DueDate)
	require.NotNil(t, rec.TotalDue)
	assert.Equal(t, 345.67, *rec.TotalDue)

	// Everything absent stays explicitly unknown.
	assert.Nil(t, rec.IssueDate)
	assert.Nil(t, rec.PreviousReading)
	assert.Nil(t, rec.CurrentReading)
	assert.Nil(t, rec.ConsumptionQty)
	assert.Nil(t, rec.Injections)
	assert.Nil(t, rec.HistoricalAverage)
	assert.Equal(t, model.AutoDebitNo, rec.AutoDebit)
}

func TestExtract_Idempotent(t *testing.T) {
	frags := []model.TextFragment{
		frag(1, "UNIDADE CONSUMIDORA 1012345678", 10, 700),
		frag(1, "CONSUMO SCEE kWh 0,964401 100,00 96,44", 10, 650),
		frag(1, "VENCIMENTO 15/11/2024", 10, 600),
	}
	e := New(Config{})
	first := e.Extract(frags)
	second := e.Extract(frags)
	assert.Equal(t, first, second)
}

func TestMergeRecord_FirstStrategyWins(t *testing.T) {
	dst := model.InvoiceRecord{TotalDue: model.Float(100), AutoDebit: model.AutoDebitYes}
	src := model.InvoiceRecord{TotalDue: model.Float(200), DueDate: model.String("01/01/2025"), AutoDebit: model.AutoDebitNo}
	mergeRecord(&dst, src)

	assert.Equal(t, 100.0, *dst.TotalDue)
	assert.Equal(t, model.AutoDebitYes, dst.AutoDebit)
	// Unset fields are filled from the later strategy.
	require.NotNil(t, dst.DueDate)
	assert.Equal(t, "01/01/2025", *dst.DueDate)
}

func TestFinalize_Rounding(t *testing.T) {
	rec := model.InvoiceRecord{
		TotalDue:             model.Float(150.004),
		ConsumptionQty:       model.Float(99.999),
		ConsumptionUnitPrice: model.Float(0.9644014),
		Injections: []model.Injection{{
			UC:                 "10987654",
			QuantKWh:           model.Float(150.006),
			UnitPriceWithTaxes: model.Float(0.1234566),
			Total:              model.Float(144.664),
		}},
	}
	finalize(&rec)

	assert.Equal(t, 150.0, *rec.TotalDue)
	assert.Equal(t, 100.0, *rec.ConsumptionQty)
	assert.Equal(t, 0.964401, *rec.ConsumptionUnitPrice)
	assert.Equal(t, 150.01, *rec.Injections[0].QuantKWh)
	assert.Equal(t, 0.123457, *rec.Injections[0].UnitPriceWithTaxes)
	assert.Equal(t, 144.66, *rec.Injections[0].Total)
	assert.Equal(t, model.AutoDebitNo, rec.AutoDebit)
}
