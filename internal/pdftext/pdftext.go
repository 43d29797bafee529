// Package pdftext adapts the PDF decoder to the extraction engine's input
// contract: an ordered-by-page sequence of positioned text fragments.
package pdftext

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"

	"github.com/solbras/fatura-cli/internal/model"
)

// mergeGapFactor scales a run's font size into the maximum horizontal gap
// at which two adjacent glyph runs still merge into one fragment.
const mergeGapFactor = 0.35

// Extract decodes buf as a PDF and returns its text fragments, page by
// page in order. A buffer that is not decodable as a PDF is a terminal
// input-format error: no partial result is returned.
func Extract(buf []byte) ([]model.TextFragment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, eris.Wrap(err, "pdftext: not a decodable PDF")
	}

	var fragments []model.TextFragment
	for p := 1; p <= reader.NumPage(); p++ {
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}
		fragments = append(fragments, pageFragments(p, page.Content().Text)...)
	}
	return fragments, nil
}

// pageFragments converts decoded glyph runs into fragments, merging
// horizontally contiguous runs on the same baseline. The decoder emits
// per-glyph runs; without merging, line text would come out one letter
// per token.
func pageFragments(pageNum int, texts []pdf.Text) []model.TextFragment {
	var out []model.TextFragment
	var cur *model.TextFragment
	var curEnd float64

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		gap := t.FontSize * mergeGapFactor
		if cur != nil && t.Y == cur.Y && t.X >= curEnd-0.01 && t.X-curEnd <= gap {
			cur.Text += t.S
			curEnd = t.X + t.W
			cur.Width = curEnd - cur.X
			continue
		}
		flush()
		f := model.TextFragment{
			Page:   pageNum,
			Text:   t.S,
			X:      t.X,
			Y:      t.Y,
			Width:  t.W,
			Height: t.FontSize,
		}
		cur = &f
		curEnd = t.X + t.W
	}
	flush()
	return out
}
