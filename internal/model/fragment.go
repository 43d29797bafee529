package model

// TextFragment is one atomic piece of rendered text on a page, as produced
// by the PDF decoder. Coordinates are in the decoder's native space with Y
// increasing toward the top of the page.
type TextFragment struct {
	Page   int     `json:"page"`
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Line is a logical row of text: fragments on the same page whose vertical
// positions fall within the grouping tolerance, ordered left to right.
// Y is the vertical position of the first fragment assigned to the line.
type Line struct {
	Page      int
	Y         float64
	Fragments []TextFragment
	Text      string
}
