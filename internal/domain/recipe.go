package domain

import "time"

// Recipe is a shared recipe both users can annotate.
type Recipe struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	AddedBy string       `json:"addedBy"`
	AddedAt time.Time    `json:"addedAt"`
	Notes   []RecipeNote `json:"notes,omitempty"`
}

// RecipeNote is an annotation appended to a recipe. Notes are never edited.
type RecipeNote struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}
