package raglab

// TextLengthStats accumulates character-length statistics over a set of
// texts. The zero value is ready to use; Count == 0 means no texts seen.
type TextLengthStats struct {
	Count      int64 `json:"count"`
	TotalChars int64 `json:"totalChars"`
	MinChars   int64 `json:"minChars"`
	MaxChars   int64 `json:"maxChars"`
}

func (s *TextLengthStats) Add(textLen int) {
	n := int64(textLen)

	if s.Count == 0 || n < s.MinChars {
		s.MinChars = n
	}
	if n > s.MaxChars {
		s.MaxChars = n
	}

	s.Count++
	s.TotalChars += n
}

func (s *TextLengthStats) AvgChars() float64 {
	if s.Count == 0 {
		return 0
	}

	return float64(s.TotalChars) / float64(s.Count)
}

// SourceCount is one row of a chunks-per-source distribution.
type SourceCount struct {
	Source    string `json:"source"`
	NumChunks int64  `json:"numChunks"`
}

// DocChunkCount is one row of a chunks-per-document aggregation.
type DocChunkCount struct {
	DocID     string `json:"docId"`
	NumChunks int64  `json:"numChunks"`
}
