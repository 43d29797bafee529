package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/solbras/fatura-cli/internal/model"
)

// DefaultLineTolerance is the vertical distance (in PDF position units)
// within which two fragments are considered part of the same line.
const DefaultLineTolerance = 2.0

// GroupLines clusters fragments into logical lines. Fragments are stable-
// sorted by (page, Y descending, X ascending) and each one attaches to the
// first existing line on its page whose representative Y is within
// tolerance, else opens a new line. The first-found attachment (rather
// than nearest-Y) is a deliberate simplification carried over from the
// observed extractor; when two candidate lines both qualify, construction
// order wins.
func GroupLines(fragments []model.TextFragment, tolerance float64) []model.Line {
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}

	sorted := make([]model.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		return a.X < b.X
	})

	var lines []model.Line
	for _, f := range sorted {
		idx := -1
		for i := range lines {
			if lines[i].Page == f.Page && math.Abs(lines[i].Y-f.Y) <= tolerance {
				idx = i
				break
			}
		}
		if idx < 0 {
			lines = append(lines, model.Line{Page: f.Page, Y: f.Y})
			idx = len(lines) - 1
		}
		lines[idx].Fragments = append(lines[idx].Fragments, f)
	}

	for i := range lines {
		frags := lines[i].Fragments
		sort.SliceStable(frags, func(a, b int) bool { return frags[a].X < frags[b].X })
		parts := make([]string, len(frags))
		for j, f := range frags {
			parts[j] = f.Text
		}
		lines[i].Text = strings.Join(parts, " ")
	}
	return lines
}
