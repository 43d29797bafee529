package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/solbras/fatura-cli/internal/layout"
	"github.com/solbras/fatura-cli/internal/model"
)

var (
	consumptionAnchorRe = regexp.MustCompile(`(?i)CONSUMO\s+SCEE`)
	injectionAnchorRe   = regexp.MustCompile(`(?i)INJE[ÇC][AÃ]O\s+SCEE`)
	sceeInfoAnchorRe    = regexp.MustCompile(`(?i)INFORMA[ÇC][AÃ]OES?\s+DO\s+SCEE`)
	activeEnergyRe      = regexp.MustCompile(`(?i)ENERGIA\s+ATIVA\s*-\s*KWH`)

	// unit price (6 decimals), quantity, optional intermediate column, total.
	consumptionTriadRe = regexp.MustCompile(`([01],\d{6})\s+([\d.]+,\d{2})(?:\s+[\d.]+,\d{2})?\s+([\d.]+,\d{2})`)
	unitPriceTokenRe   = regexp.MustCompile(`\b([01],\d{6})\b`)

	ucPresentRe    = regexp.MustCompile(`UC\s*\d+`)
	injectionRowRe = regexp.MustCompile(`(?i)UC\s*(\d{6,12}).*?kWh\s*([\d.]+,\d{2}).*?([01],\d{6}).*?(?:-?[\d.]+,\d{2})?.*?(-?[\d.]+,\d{2})`)

	cycleRe          = regexp.MustCompile(`\((\d{1,2}/\d{4})\)`)
	generatorUnitRe  = regexp.MustCompile(`(?i)UC\s+(\d{8,12})`)
	generatorProdRe  = regexp.MustCompile(`UC\s+\d+\s*[:\-]?\s*([\d.]+,\d{2})`)
	excessRe         = regexp.MustCompile(`(?i)EXCEDENTE\s+RECEBIDO.*?([\d.]+,\d{2})`)
	creditRe         = regexp.MustCompile(`(?i)CR[ÉE]DITO\s+RECEBIDO.*?([\d.]+,\d{2})`)
	balanceRe        = regexp.MustCompile(`(?i)SALDO\s+KWH.*?([\d.]+,\d{2})`)
	allocationUnitRe = regexp.MustCompile(`(?i)CADASTRO\s+RATEIO.*?UC\s+(\d+)`)
	allocationPctRe  = regexp.MustCompile(`=\s*([\d.,]+%)`)

	meterTriadRe = regexp.MustCompile(`(?i)KWH\s+(\d+)\s+(\d+)\D+(\d+)`)
)

// Positional extracts the SCEE (net-metering) fields and the meter
// readings by locating label anchors and reading geometrically relative
// values.
type Positional struct {
	LineTolerance float64
	MaxRightGap   float64
}

// Name implements Strategy.
func (Positional) Name() string { return "positional" }

// Extract implements Strategy.
func (p Positional) Extract(doc *layout.Document) model.InvoiceRecord {
	var rec model.InvoiceRecord
	p.consumption(doc, &rec)
	p.injections(doc, &rec)
	p.sceeInfo(doc, &rec)
	p.meterReadings(doc, &rec)
	return rec
}

// consumption reads the "CONSUMO SCEE" line's numeric triad: unit price,
// quantity, total, tolerating an optional intermediate column. The
// tariff-without-taxes value is the first 6-decimal token on the line.
// The triad normally sits wholly on the anchor line; the right-of scan
// only ever appends tokens after it, so the joined text is a superset of
// the anchor text and the bare-anchor retry covers the common case.
func (p Positional) consumption(doc *layout.Document, rec *model.InvoiceRecord) {
	anchors := layout.FindAnchors(doc.Lines, consumptionAnchorRe)
	if len(anchors) == 0 {
		return
	}
	anchor := anchors[0]

	right := layout.ReadRightOf(doc.Lines, anchor, p.MaxRightGap, 8)
	joined := strings.TrimSpace(anchor.Text + " " + strings.Join(right, " "))

	m := consumptionTriadRe.FindStringSubmatch(joined)
	if m == nil {
		m = consumptionTriadRe.FindStringSubmatch(anchor.Text)
	}
	if m != nil {
		rec.ConsumptionUnitPrice = layout.ParseNumber(m[1])
		rec.ConsumptionQty = layout.ParseNumber(m[2])
		rec.ConsumptionTotal = layout.ParseNumber(m[3])
	}

	if m := unitPriceTokenRe.FindStringSubmatch(anchor.Text); m != nil {
		rec.TariffWithoutTaxes = layout.ParseNumber(m[1])
	}
}

// injections reads every "INJEÇÃO SCEE" anchor's block below, re-groups it
// into sub-lines, and extracts one entry per source-unit row. Anchors are
// visited in line order, so the output list preserves the top-to-bottom
// page order.
func (p Positional) injections(doc *layout.Document, rec *model.InvoiceRecord) {
	for _, anchor := range layout.FindAnchors(doc.Lines, injectionAnchorRe) {
		block := layout.ReadBlockBelow(doc.Fragments, anchor, layout.BlockBox{DY: 5, H: 140})
		for _, ln := range layout.GroupLines(block, p.LineTolerance) {
			if !ucPresentRe.MatchString(ln.Text) {
				continue
			}
			m := injectionRowRe.FindStringSubmatch(ln.Text)
			if m == nil {
				continue
			}
			inj := model.Injection{
				UC:                 m[1],
				QuantKWh:           layout.ParseNumber(m[2]),
				UnitPriceWithTaxes: layout.ParseNumber(m[3]),
			}
			if total := layout.ParseNumber(m[4]); total != nil {
				inj.Total = model.Float(math.Abs(*total))
			}
			rec.Injections = append(rec.Injections, inj)
		}
	}
}

// sceeInfo reads the block below the "INFORMAÇÕES DO SCEE" anchor and
// regex-extracts the generation summary out of its flattened text.
func (p Positional) sceeInfo(doc *layout.Document, rec *model.InvoiceRecord) {
	anchors := layout.FindAnchors(doc.Lines, sceeInfoAnchorRe)
	if len(anchors) == 0 {
		return
	}
	block := layout.ReadBlockBelow(doc.Fragments, anchors[0], layout.BlockBox{DY: 6, H: 300})
	sub := layout.GroupLines(block, p.LineTolerance)
	parts := make([]string, len(sub))
	for i, ln := range sub {
		parts[i] = ln.Text
	}
	text := layout.NormalizeSpaces(strings.Join(parts, " "))

	if m := cycleRe.FindStringSubmatch(text); m != nil {
		rec.GenerationCycle = model.String(m[1])
	}
	if m := generatorUnitRe.FindStringSubmatch(text); m != nil {
		rec.GeneratorUnit = model.String(m[1])
	}
	if m := generatorProdRe.FindStringSubmatch(text); m != nil {
		rec.GeneratorProduction = layout.ParseNumber(m[1])
	}
	if m := excessRe.FindStringSubmatch(text); m != nil {
		rec.ExcessReceived = layout.ParseNumber(m[1])
	}
	if m := creditRe.FindStringSubmatch(text); m != nil {
		rec.CreditReceived = layout.ParseNumber(m[1])
	}
	if m := balanceRe.FindStringSubmatch(text); m != nil {
		rec.KWhBalance = layout.ParseNumber(m[1])
	}
	if m := allocationUnitRe.FindStringSubmatch(text); m != nil {
		rec.AllocationUnit = model.String(m[1])
	}
	// First percentage-shaped token wins; which one is intended when
	// several appear is ambiguous in the source layout.
	if m := allocationPctRe.FindStringSubmatch(text); m != nil {
		rec.AllocationPercent = model.String(m[1])
	}
}

// meterReadings parses the "ENERGIA ATIVA - KWH" line's integer triad
// (current, consumption, previous) and accepts the reading pair only when
// |current − previous| equals the consumption. An inconsistent triad
// leaves both readings unknown.
func (p Positional) meterReadings(doc *layout.Document, rec *model.InvoiceRecord) {
	lines := layout.FindAnchors(doc.Lines, activeEnergyRe)
	if len(lines) == 0 {
		return
	}
	m := meterTriadRe.FindStringSubmatch(lines[0].Text)
	if m == nil {
		return
	}
	current, err1 := strconv.Atoi(m[1])
	consumption, err2 := strconv.Atoi(m[2])
	previous, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}
	if int(math.Abs(float64(current-previous))) != consumption {
		return
	}
	rec.CurrentReading = model.Int(current)
	rec.PreviousReading = model.Int(previous)
}
