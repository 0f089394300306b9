package models

// SourceDocument is one input document after format decoding.
// Content is raw text, not yet normalized.
type SourceDocument struct {
	ID      string
	Name    string
	Type    string // "json", "text", "html"
	Content string
}

// Token is an atomic text unit produced by the segmenter.
// Position is the byte offset into the normalized source text.
type Token struct {
	Text        string
	Position    int
	SourceDocID string
}

// CandidateKeyword is a token or merged phrase proposed for one section.
// A phrase scoring above the acceptance threshold for several sections
// yields one candidate per section; the ranker resolves the overlap.
type CandidateKeyword struct {
	Token
	Section Section
	Score   float64
}
