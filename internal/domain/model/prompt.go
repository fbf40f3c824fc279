package model

import "time"

// PromptTemplate is a named system-prompt row. Name is unique; templates
// named "personality_<key>" override the built-in personality prompts.
type PromptTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
