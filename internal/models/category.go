package models

// Category is a playable word category as served by the word-data backend.
// Categories are sourced externally and never mutated by this server.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}
