package layout

import (
	"regexp"

	"github.com/solbras/fatura-cli/internal/model"
)

// FindAnchors returns every line whose text matches re, in the line
// collection's own order (page ascending, construction order within a
// page). Zero matches is a normal outcome: callers treat "no anchor" as
// "field unknown".
func FindAnchors(lines []model.Line, re *regexp.Regexp) []model.Line {
	var out []model.Line
	for _, ln := range lines {
		if re.MatchString(ln.Text) {
			out = append(out, ln)
		}
	}
	return out
}

// FindAnchorsLiteral matches lines containing the literal text,
// case-insensitively.
func FindAnchorsLiteral(lines []model.Line, text string) []model.Line {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(text))
	return FindAnchors(lines, re)
}
