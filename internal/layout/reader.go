package layout

import (
	"math"
	"regexp"

	"github.com/solbras/fatura-cli/internal/model"
)

// ReadRightTolerance is the vertical distance within which a line counts
// as "the same row" as an anchor when reading values to its right. It is
// tighter than the grouping tolerance.
const ReadRightTolerance = 2.5

var numeralShapeRe = regexp.MustCompile(`[\d.,\-]`)

// BlockBox describes a rectangle relative to an anchor line: DX/DY offset
// the top-left corner from the anchor's minimum X and Y, W and H give its
// extent. Zero W or H fall back to a page-wide, 200-unit-tall box.
type BlockBox struct {
	DX float64
	DY float64
	W  float64
	H  float64
}

// ReadRightOf collects up to take token strings positioned to the right of
// the anchor: fragments on same-page lines within ReadRightTolerance of
// the anchor's Y whose X lies past the anchor's right edge by at most
// maxDx and whose text contains a numeral-shaped character. An empty
// result means no qualifying token, not an error.
func ReadRightOf(lines []model.Line, anchor model.Line, maxDx float64, take int) []string {
	rightEdge := math.Inf(-1)
	for _, f := range anchor.Fragments {
		if e := f.X + f.Width; e > rightEdge {
			rightEdge = e
		}
	}

	var out []string
	for _, ln := range lines {
		if ln.Page != anchor.Page || math.Abs(ln.Y-anchor.Y) > ReadRightTolerance {
			continue
		}
		for _, f := range ln.Fragments {
			if f.X > rightEdge && f.X-rightEdge <= maxDx && numeralShapeRe.MatchString(f.Text) {
				out = append(out, f.Text)
			}
		}
	}
	if take > 0 && len(out) > take {
		out = out[:take]
	}
	return out
}

// ReadBlockBelow returns the raw fragments on the anchor's page inside the
// rectangle described by box, anchored at the anchor's minimum X and Y.
// Callers typically re-group the result with GroupLines to extract fields
// from the sub-region.
func ReadBlockBelow(fragments []model.TextFragment, anchor model.Line, box BlockBox) []model.TextFragment {
	minX := math.Inf(1)
	for _, f := range anchor.Fragments {
		if f.X < minX {
			minX = f.X
		}
	}

	w := box.W
	if w == 0 {
		w = 9999
	}
	h := box.H
	if h == 0 {
		h = 200
	}
	x1 := minX + box.DX
	x2 := x1 + w
	yTop := anchor.Y - box.DY
	yBottom := yTop - h

	var out []model.TextFragment
	for _, f := range fragments {
		if f.Page == anchor.Page && f.X >= x1 && f.X <= x2 && f.Y >= yBottom && f.Y <= yTop {
			out = append(out, f)
		}
	}
	return out
}
