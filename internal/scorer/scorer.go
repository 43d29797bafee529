// Package scorer compares a predicted invoice record against a
// hand-verified gold record field by field.
package scorer

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/solbras/fatura-cli/internal/model"
)

// Per-category comparison tolerances. They absorb the expected rounding
// noise of each field category, nothing more: money totals round to
// cents, unit prices carry 6 decimals, computed totals accumulate both.
const (
	MoneyTolerance         = 0.01
	UnitPriceTolerance     = 1e-5
	ComputedTotalTolerance = 0.05
)

// Score compares pred against gold and reports per-field matches.
// Identifier, date, and string fields use exact equality; numeric fields
// use the category tolerance. Injection lists are compared index by index
// up to the shorter length, with the length itself scored as its own
// field. Neither input is mutated.
func Score(pred, gold *model.InvoiceRecord) (*model.ScoreReport, error) {
	if pred == nil || gold == nil {
		return nil, eris.New("scorer: both prediction and gold record are required")
	}

	var b builder
	b.mark("unidade_consumidora", equalStr(pred.ConsumerUnit, gold.ConsumerUnit), gold.ConsumerUnit, pred.ConsumerUnit)
	b.mark("total_a_pagar", approx(pred.TotalDue, gold.TotalDue, MoneyTolerance), gold.TotalDue, pred.TotalDue)
	b.mark("data_vencimento", equalStr(pred.DueDate, gold.DueDate), gold.DueDate, pred.DueDate)
	b.mark("data_leitura_anterior", equalStr(pred.PreviousReadingDate, gold.PreviousReadingDate), gold.PreviousReadingDate, pred.PreviousReadingDate)
	b.mark("data_leitura_atual", equalStr(pred.CurrentReadingDate, gold.CurrentReadingDate), gold.CurrentReadingDate, pred.CurrentReadingDate)
	b.mark("data_proxima_leitura", equalStr(pred.NextReadingDate, gold.NextReadingDate), gold.NextReadingDate, pred.NextReadingDate)
	b.mark("data_emissao", equalStr(pred.IssueDate, gold.IssueDate), gold.IssueDate, pred.IssueDate)
	b.mark("apresentacao", equalStr(pred.PresentationDate, gold.PresentationDate), gold.PresentationDate, pred.PresentationDate)
	b.mark("mes_ano_referencia", equalStr(pred.ReferenceMonth, gold.ReferenceMonth), gold.ReferenceMonth, pred.ReferenceMonth)
	b.mark("leitura_anterior", equalInt(pred.PreviousReading, gold.PreviousReading), gold.PreviousReading, pred.PreviousReading)
	b.mark("leitura_atual", equalInt(pred.CurrentReading, gold.CurrentReading), gold.CurrentReading, pred.CurrentReading)

	b.mark("consumo_scee_preco_unit", approx(pred.ConsumptionUnitPrice, gold.ConsumptionUnitPrice, UnitPriceTolerance), gold.ConsumptionUnitPrice, pred.ConsumptionUnitPrice)
	b.mark("consumo_scee_quant", approx(pred.ConsumptionQty, gold.ConsumptionQty, MoneyTolerance), gold.ConsumptionQty, pred.ConsumptionQty)
	b.mark("consumo_scee_total", approx(pred.ConsumptionTotal, gold.ConsumptionTotal, ComputedTotalTolerance), gold.ConsumptionTotal, pred.ConsumptionTotal)

	if gold.Injections != nil {
		b.mark("inj_len", len(pred.Injections) == len(gold.Injections), len(gold.Injections), len(pred.Injections))
		n := len(pred.Injections)
		if len(gold.Injections) < n {
			n = len(gold.Injections)
		}
		for i := 0; i < n; i++ {
			g, p := gold.Injections[i], pred.Injections[i]
			b.mark(fmt.Sprintf("inj[%d].uc", i), p.UC == g.UC, g.UC, p.UC)
			b.mark(fmt.Sprintf("inj[%d].quant", i), approx(p.QuantKWh, g.QuantKWh, MoneyTolerance), g.QuantKWh, p.QuantKWh)
			b.mark(fmt.Sprintf("inj[%d].preco", i), approx(p.UnitPriceWithTaxes, g.UnitPriceWithTaxes, UnitPriceTolerance), g.UnitPriceWithTaxes, p.UnitPriceWithTaxes)
			b.mark(fmt.Sprintf("inj[%d].total", i), approx(p.Total, g.Total, ComputedTotalTolerance), g.Total, p.Total)
		}
	}

	return b.report(), nil
}

type builder struct {
	total int
	ok    int
	fails []model.Mismatch
}

func (b *builder) mark(field string, pass bool, expected, got any) {
	b.total++
	if pass {
		b.ok++
		return
	}
	b.fails = append(b.fails, model.Mismatch{Field: field, Expected: deref(expected), Got: deref(got)})
}

func (b *builder) report() *model.ScoreReport {
	accuracy := 0.0
	if b.total > 0 {
		accuracy = math.Floor(float64(b.ok)/float64(b.total)*1000+0.5) / 10
	}
	return &model.ScoreReport{
		Accuracy:   accuracy,
		Matched:    b.ok,
		Total:      b.total,
		Mismatches: b.fails,
	}
}

// approx is the tolerance comparison; an unknown on either side is a
// mismatch, matching the calibrated scoring behavior.
func approx(a, b *float64, eps float64) bool {
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) <= eps
}

// equalStr treats two unknowns as equal, mirroring strict equality on
// nullable fields.
func equalStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// deref unwraps pointer values for the mismatch report.
func deref(v any) any {
	switch p := v.(type) {
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int:
		if p == nil {
			return nil
		}
		return *p
	default:
		return v
	}
}
