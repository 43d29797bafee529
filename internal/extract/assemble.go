package extract

import (
	"go.uber.org/zap"

	"github.com/solbras/fatura-cli/internal/layout"
	"github.com/solbras/fatura-cli/internal/model"
)

// Extractor runs the field strategies in fixed priority order (positional
// first, regex fallback second) and assembles the final record.
type Extractor struct {
	cfg        Config
	strategies []Strategy
}

// New creates an Extractor with the calibrated defaults filled in.
func New(cfg Config) *Extractor {
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = layout.DefaultLineTolerance
	}
	if cfg.MaxRightGap <= 0 {
		cfg.MaxRightGap = DefaultMaxRightGap
	}
	return &Extractor{
		cfg: cfg,
		strategies: []Strategy{
			Positional{LineTolerance: cfg.LineTolerance, MaxRightGap: cfg.MaxRightGap},
			RegexFallback{},
		},
	}
}

// Extract assembles an InvoiceRecord from decoded fragments. Extraction is
// pure and deterministic: the same fragments always yield the same record,
// and missing fields come back nil rather than failing the document.
func (e *Extractor) Extract(fragments []model.TextFragment) model.InvoiceRecord {
	doc := layout.NewDocument(fragments, e.cfg.LineTolerance)

	var merged model.InvoiceRecord
	for _, s := range e.strategies {
		partial := s.Extract(doc)
		mergeRecord(&merged, partial)
		zap.L().Debug("extract: strategy done", zap.String("strategy", s.Name()))
	}
	finalize(&merged)
	return merged
}

// mergeRecord fills dst's unset fields from src. Earlier strategies win:
// a field already present in dst is never overwritten.
func mergeRecord(dst *model.InvoiceRecord, src model.InvoiceRecord) {
	dst.ConsumerUnit = pickS(dst.ConsumerUnit, src.ConsumerUnit)
	dst.TotalDue = pickF(dst.TotalDue, src.TotalDue)
	dst.DueDate = pickS(dst.DueDate, src.DueDate)
	dst.PreviousReadingDate = pickS(dst.PreviousReadingDate, src.PreviousReadingDate)
	dst.CurrentReadingDate = pickS(dst.CurrentReadingDate, src.CurrentReadingDate)
	dst.NextReadingDate = pickS(dst.NextReadingDate, src.NextReadingDate)
	dst.IssueDate = pickS(dst.IssueDate, src.IssueDate)
	dst.PresentationDate = pickS(dst.PresentationDate, src.PresentationDate)
	dst.ReferenceMonth = pickS(dst.ReferenceMonth, src.ReferenceMonth)
	dst.PreviousReading = pickI(dst.PreviousReading, src.PreviousReading)
	dst.CurrentReading = pickI(dst.CurrentReading, src.CurrentReading)
	dst.GrossTariffBenefit = pickF(dst.GrossTariffBenefit, src.GrossTariffBenefit)
	dst.NetTariffBenefit = pickF(dst.NetTariffBenefit, src.NetTariffBenefit)
	dst.ICMS = pickF(dst.ICMS, src.ICMS)
	dst.PISPasep = pickF(dst.PISPasep, src.PISPasep)
	dst.COFINS = pickF(dst.COFINS, src.COFINS)
	if dst.AutoDebit == "" {
		dst.AutoDebit = src.AutoDebit
	}
	dst.CreditReceived = pickF(dst.CreditReceived, src.CreditReceived)
	dst.KWhBalance = pickF(dst.KWhBalance, src.KWhBalance)
	dst.ExcessReceived = pickF(dst.ExcessReceived, src.ExcessReceived)
	dst.GenerationCycle = pickS(dst.GenerationCycle, src.GenerationCycle)
	dst.GeneratorUnit = pickS(dst.GeneratorUnit, src.GeneratorUnit)
	dst.GeneratorProduction = pickF(dst.GeneratorProduction, src.GeneratorProduction)
	dst.AllocationUnit = pickS(dst.AllocationUnit, src.AllocationUnit)
	dst.AllocationPercent = pickS(dst.AllocationPercent, src.AllocationPercent)
	dst.TariffWithoutTaxes = pickF(dst.TariffWithoutTaxes, src.TariffWithoutTaxes)
	if dst.Injections == nil {
		dst.Injections = src.Injections
	}
	dst.ConsumptionQty = pickF(dst.ConsumptionQty, src.ConsumptionQty)
	dst.ConsumptionUnitPrice = pickF(dst.ConsumptionUnitPrice, src.ConsumptionUnitPrice)
	dst.ConsumptionTotal = pickF(dst.ConsumptionTotal, src.ConsumptionTotal)
	dst.HistoricalAverage = pickI(dst.HistoricalAverage, src.HistoricalAverage)
	dst.ClientNotices = pickS(dst.ClientNotices, src.ClientNotices)
	dst.Observations = pickS(dst.Observations, src.Observations)
}

// finalize applies the field-specific precision rules: totals and
// quantities to 2 decimals, unit prices to 6.
func finalize(rec *model.InvoiceRecord) {
	rec.TotalDue = round2p(rec.TotalDue)
	rec.ConsumptionQty = round2p(rec.ConsumptionQty)
	rec.ConsumptionTotal = round2p(rec.ConsumptionTotal)
	rec.ConsumptionUnitPrice = round6p(rec.ConsumptionUnitPrice)
	for i := range rec.Injections {
		rec.Injections[i].QuantKWh = round2p(rec.Injections[i].QuantKWh)
		rec.Injections[i].UnitPriceWithTaxes = round6p(rec.Injections[i].UnitPriceWithTaxes)
		rec.Injections[i].Total = round2p(rec.Injections[i].Total)
	}
	if rec.AutoDebit == "" {
		rec.AutoDebit = model.AutoDebitNo
	}
}

func pickF(dst, src *float64) *float64 {
	if dst != nil {
		return dst
	}
	return src
}

func pickS(dst, src *string) *string {
	if dst != nil {
		return dst
	}
	return src
}

func pickI(dst, src *int) *int {
	if dst != nil {
		return dst
	}
	return src
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(layout.Round2(*v))
}

func round6p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(layout.Round6(*v))
}
