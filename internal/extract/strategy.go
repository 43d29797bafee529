// Package extract implements the invoice field extractors: a positional
// strategy built on anchors and relative reads, a regex fallback strategy
// over the reconstructed document text, and the assembler that merges both
// with fixed precedence.
package extract

import (
	"github.com/solbras/fatura-cli/internal/layout"
	"github.com/solbras/fatura-cli/internal/model"
)

// DefaultMaxRightGap is the maximum horizontal distance (position units)
// past an anchor's right edge at which a token still counts as "to the
// right of" the anchor.
const DefaultMaxRightGap = 400

// Strategy reads whatever fields it can from a document and returns a
// sparse record: nil fields mean "this strategy has nothing for that
// field". Strategies never fail; an unreadable field is simply left nil.
type Strategy interface {
	Name() string
	Extract(doc *layout.Document) model.InvoiceRecord
}

// Config holds the extraction tolerances. Zero values fall back to the
// calibrated defaults.
type Config struct {
	LineTolerance float64
	MaxRightGap   float64
}
