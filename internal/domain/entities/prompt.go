package entities

import "time"

// PromptTemplate is one editable analysis prompt. Template text uses
// {variable} placeholders that must cover RequiredVariables.
type PromptTemplate struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Template          string    `json:"template"`
	RequiredVariables []string  `json:"required_variables"`
	LastModified      time.Time `json:"last_modified"`
	ModifiedBy        string    `json:"modified_by"`
}

// PromptValidation is the result of checking a template's placeholders
// and size.
type PromptValidation struct {
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	EstimatedTokens int      `json:"estimated_tokens"`
}
