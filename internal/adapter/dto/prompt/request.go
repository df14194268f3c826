package prompt

// UpdateRequest represents the request to update a prompt template
type UpdateRequest struct {
	Template   string `json:"template" validate:"required,min=1"`
	ModifiedBy string `json:"modified_by" validate:"omitempty,max=255"`
}

// ValidateRequest carries a candidate template to check without saving
type ValidateRequest struct {
	Template string `json:"template"`
}
