// Package layout reconstructs logical structure from positioned text
// fragments: line grouping, anchor search, relative reads, and the
// Brazilian numeric grammar used throughout extraction.
package layout

import (
	"strings"

	"github.com/solbras/fatura-cli/internal/model"
)

// Document is the derived view of one decoded invoice: the raw fragments,
// the grouped lines, and the reconstructed full text used by regex
// fallback extraction. It is recomputed per extraction and never mutated.
type Document struct {
	Fragments []model.TextFragment
	Lines     []model.Line
	FullText  string
}

// NewDocument groups fragments into lines and reconstructs the document
// text (lines joined with newlines, whitespace normalized).
func NewDocument(fragments []model.TextFragment, lineTolerance float64) *Document {
	lines := GroupLines(fragments, lineTolerance)
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = ln.Text
	}
	return &Document{
		Fragments: fragments,
		Lines:     lines,
		FullText:  NormalizeSpaces(strings.Join(parts, "\n")),
	}
}
