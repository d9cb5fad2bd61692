package models

// WordPair is one secret/reference pair drawn for a round. Word is the secret
// term, Ref is the public reference shown to the guessing side, Hint is an
// optional extra clue.
type WordPair struct {
	Word string  `json:"word"`
	Ref  string  `json:"ref"`
	Hint *string `json:"hint,omitempty"`
}

// Complete reports whether the pair is usable for play. A pair missing either
// the secret word or the reference counts as no data regardless of what the
// backend returned.
func (p WordPair) Complete() bool {
	return p.Word != "" && p.Ref != ""
}
