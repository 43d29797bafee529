package model

// Mismatch records one field where a prediction diverged from the gold
// record.
type Mismatch struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"`
	Got      any    `json:"got"`
}

// ScoreReport is the result of comparing a predicted InvoiceRecord against
// a gold record field by field.
type ScoreReport struct {
	Accuracy   float64    `json:"accuracy"`
	Matched    int        `json:"ok"`
	Total      int        `json:"total"`
	Mismatches []Mismatch `json:"fails"`
}
