package extract

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/solbras/fatura-cli/internal/layout"
	"github.com/solbras/fatura-cli/internal/model"
)

// Text window around the "total followed by a date" position used by the
// meter-reading date fallback. Best-effort heuristic, not a guaranteed
// parse; the window sizes are calibrated against the observed layout.
const (
	dateWindowBefore = 250
	dateWindowAfter  = 450
)

var (
	ucLongRe       = regexp.MustCompile(`(10\d{8,10})`)
	ucAfterMonthRe = regexp.MustCompile(`(?i)(JAN|FEV|MAR|ABR|MAI|JUN|JUL|AGO|SET|OUT|NOV|DEZ)/\d{4}\s+(\d{6,12})`)
	ucAfterLabelRe = regexp.MustCompile(`(?i)UC\s*(\d{8,12})`)
	refMonthRe     = regexp.MustCompile(`(?i)(JAN|FEV|MAR|ABR|MAI|JUN|JUL|AGO|SET|OUT|NOV|DEZ)/\d{4}`)

	totalDueRe      = regexp.MustCompile(`R\$\*+\s*([\d.]+,\d{2})`)
	dueDateRe       = regexp.MustCompile(`(?i)VENCIMENTO\s*[:\-]?\s*(\d{2}/\d{2}/\d{4})`)
	dueAfterTotalRe = regexp.MustCompile(`R\$\*+[\d.,]+\s*(\d{2}/\d{2}/\d{4})`)
	issueDateRe     = regexp.MustCompile(`(?i)EMISS[ÃA]O\s*[:\-]?\s*(\d{2}/\d{2}/\d{4})`)
	presentationRe  = regexp.MustCompile(`(?i)APRESENTA[ÇC][AÃ]O\s*[:\-]?\s*(\d{2}/\d{2}/\d{4})`)
	presentLabelRe  = regexp.MustCompile(`(?i)APRESENT`)
	anyDateRe       = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

	prevReadingDateRe = regexp.MustCompile(`(?i)LEITURA\s+ANTERIOR.*?(\d{2}/\d{2}/\d{4})`)
	currReadingDateRe = regexp.MustCompile(`(?i)LEITURA\s+ATUAL.*?(\d{2}/\d{2}/\d{4})`)
	nextReadingDateRe = regexp.MustCompile(`(?i)PR[ÓO]XIMA\s+LEITURA.*?(\d{2}/\d{2}/\d{4})`)
	totalThenDateRe   = regexp.MustCompile(`R\$\*+[\d.,]+\s*\d{2}/\d{2}/\d{4}`)

	grossBenefitRe = regexp.MustCompile(`(?i)BENEF[ÍI]CIO\s+TARIF[ÁA]RIO\s+BRUTO.*?([\d.,]+)`)
	netBenefitRe   = regexp.MustCompile(`(?i)BENEF[ÍI]CIO\s+TARIF[ÁA]RIO\s+L[ÍI]QUIDO.*?(-?[\d.,]+)`)
	icmsRe         = regexp.MustCompile(`(?i)ICMS`)
	pisRe          = regexp.MustCompile(`(?i)PIS`)
	cofinsRe       = regexp.MustCompile(`(?i)COFINS`)

	autoDebitEnrolledRe = regexp.MustCompile(`(?i)FATURA\s+COM\s+LAN[ÇC]AMENTO\s+PARA\s+D[ÉE]BITO\s+AUTOM[ÁA]TICO`)
	autoDebitPromoRe    = regexp.MustCompile(`(?i)Aproveite\s+os\s+benef[íi]cios\s+do\s+d[ée]bito\s+autom[áa]tico`)
	phoneRunRe          = regexp.MustCompile(`\b0\d{9,}\b`)

	clientNoticesRe = regexp.MustCompile(`(?is)INFORMA[ÇC][AÃ]OES?\s+PARA\s+O\s+CLIENTE[:\-]?\s*(.+?)(?:CADASTRO\s+RATEIO|NOTA\s+FISCAL|ENERGIA\s+ATIVA|A\s+EQUATORIAL|Processo|$)`)
	observationsRe  = regexp.MustCompile(`(?i)Processo\s+\d+\s*-\s*[\d.\-]+\s*-\s*Valor\s+controverso\s+R\$\s*[\d.,]+\.`)
	obsAmountRe     = regexp.MustCompile(`R\$\s*([\d.]+)[.,](\d{2})`)
	obsNewlineRe    = regexp.MustCompile(`\s*\n\s*`)

	historyAmountRe = regexp.MustCompile(`\b(\d{3,4}),00\b`)
)

// RegexFallback extracts every field that has no reliable positional
// anchor by pattern-matching the reconstructed document text.
type RegexFallback struct{}

// Name implements Strategy.
func (RegexFallback) Name() string { return "regex" }

// Extract implements Strategy.
func (RegexFallback) Extract(doc *layout.Document) model.InvoiceRecord {
	text := doc.FullText
	var rec model.InvoiceRecord

	rec.ConsumerUnit = consumerUnit(text)
	if m := refMonthRe.FindString(text); m != "" {
		rec.ReferenceMonth = model.String(m)
	}
	if m := totalDueRe.FindStringSubmatch(text); m != nil {
		if v := layout.ParseNumber(m[1]); v != nil {
			rec.TotalDue = model.Float(layout.Round2(*v))
		}
	}
	rec.DueDate = dueDate(text)
	if m := issueDateRe.FindStringSubmatch(text); m != nil {
		rec.IssueDate = model.String(m[1])
	}
	rec.PresentationDate = presentationDate(text)

	readingDates(text, &rec)

	if m := grossBenefitRe.FindStringSubmatch(text); m != nil {
		rec.GrossTariffBenefit = layout.ParseNumber(m[1])
	}
	if m := netBenefitRe.FindStringSubmatch(text); m != nil {
		rec.NetTariffBenefit = layout.ParseNumber(m[1])
	}

	// Tax lines carry no printed amount on this layout; presence of the
	// label means an explicit zero, absence means unknown.
	if icmsRe.MatchString(text) {
		rec.ICMS = model.Float(0)
	}
	if pisRe.MatchString(text) {
		rec.PISPasep = model.Float(0)
	}
	if cofinsRe.MatchString(text) {
		rec.COFINS = model.Float(0)
	}

	rec.AutoDebit = autoDebit(text)
	rec.ClientNotices = clientNotices(text)
	rec.Observations = observations(text)
	rec.HistoricalAverage = historicalAverage(text)

	return rec
}

// consumerUnit tries, in order: a long 10-prefixed numeric token, a token
// following the reference-month pattern, a token following a literal "UC".
func consumerUnit(text string) *string {
	if m := ucLongRe.FindStringSubmatch(text); m != nil {
		return model.String(m[1])
	}
	if m := ucAfterMonthRe.FindStringSubmatch(text); m != nil {
		return model.String(m[2])
	}
	if m := ucAfterLabelRe.FindStringSubmatch(text); m != nil {
		return model.String(m[1])
	}
	return nil
}

func dueDate(text string) *string {
	if m := dueDateRe.FindStringSubmatch(text); m != nil {
		return model.String(m[1])
	}
	if m := dueAfterTotalRe.FindStringSubmatch(text); m != nil {
		return model.String(m[1])
	}
	return nil
}

// presentationDate prefers the labeled form; failing that it takes the
// first date that still has "APRESENT" ahead of it on the same line.
func presentationDate(text string) *string {
	if m := presentationRe.FindStringSubmatch(text); m != nil {
		return model.String(m[1])
	}
	for _, loc := range anyDateRe.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[:i]
		}
		if presentLabelRe.MatchString(rest) {
			return model.String(text[loc[0]:loc[1]])
		}
	}
	return nil
}

// readingDates fills the previous/current/next meter-reading dates. Direct
// label-adjacent matches win; when previous or current is missing, the
// windowed scan around the total-then-due-date position collects all
// date-shaped tokens, drops the due date, and assigns the remainder in
// order.
func readingDates(text string, rec *model.InvoiceRecord) {
	if m := prevReadingDateRe.FindStringSubmatch(text); m != nil {
		rec.PreviousReadingDate = model.String(m[1])
	}
	if m := currReadingDateRe.FindStringSubmatch(text); m != nil {
		rec.CurrentReadingDate = model.String(m[1])
	}
	if m := nextReadingDateRe.FindStringSubmatch(text); m != nil {
		rec.NextReadingDate = model.String(m[1])
	}
	if rec.PreviousReadingDate != nil && rec.CurrentReadingDate != nil {
		return
	}

	window := text
	if loc := totalThenDateRe.FindStringIndex(text); loc != nil {
		// The window sizes count characters, not bytes; accented text
		// must not shrink the effective window.
		start := loc[0]
		for n := 0; n < dateWindowBefore && start > 0; n++ {
			_, size := utf8.DecodeLastRuneInString(text[:start])
			start -= size
		}
		end := loc[0]
		for n := 0; n < dateWindowAfter && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		window = text[start:end]
	}

	var due string
	if d := dueDate(text); d != nil {
		due = *d
	}
	var seq []string
	for _, d := range anyDateRe.FindAllString(window, -1) {
		if d != due {
			seq = append(seq, d)
		}
	}
	if rec.PreviousReadingDate == nil && len(seq) > 0 {
		rec.PreviousReadingDate = model.String(seq[0])
	}
	if rec.CurrentReadingDate == nil && len(seq) > 1 {
		rec.CurrentReadingDate = model.String(seq[1])
	}
	if rec.NextReadingDate == nil && len(seq) > 2 {
		rec.NextReadingDate = model.String(seq[2])
	}
}

// autoDebit reports enrollment. The promotional "enjoy the benefits of
// auto-debit" phrase (or a raw phone-like digit run next to it) is printed
// precisely for customers who are NOT enrolled, so it overrides a match of
// the enrollment phrase.
func autoDebit(text string) string {
	out := model.AutoDebitNo
	if autoDebitEnrolledRe.MatchString(text) {
		out = model.AutoDebitYes
	}
	if autoDebitPromoRe.MatchString(text) || phoneRunRe.MatchString(text) {
		out = model.AutoDebitNo
	}
	return out
}

func clientNotices(text string) *string {
	m := clientNoticesRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return model.String(m[1])
}

// observations captures the disputed-amount note and renormalizes currency
// sub-patterns inside it back to comma-decimal form.
func observations(text string) *string {
	m := observationsRe.FindString(text)
	if m == "" {
		return nil
	}
	obs := obsNewlineRe.ReplaceAllString(m, " ")
	obs = obsAmountRe.ReplaceAllStringFunc(obs, func(s string) string {
		parts := obsAmountRe.FindStringSubmatch(s)
		return "R$ " + strings.ReplaceAll(parts[1], ".", "") + "," + parts[2]
	})
	return model.String(obs)
}

// historicalAverage averages every "NNN,00"-shaped history entry in the
// document and rounds half-up to an integer.
func historicalAverage(text string) *int {
	matches := historyAmountRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	sum := 0.0
	count := 0
	for _, m := range matches {
		if v := layout.ParseNumber(m[1] + ",00"); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return model.Int(int(math.Floor(sum/float64(count) + 0.5)))
}
