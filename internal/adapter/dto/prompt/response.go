package prompt

import (
	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	promptuse "github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
)

// ListResponse wraps all prompt templates keyed by ID
type ListResponse struct {
	Prompts map[string]entities.PromptTemplate `json:"prompts"`
}

// BackupsResponse lists available prompt backups, newest first
type BackupsResponse struct {
	Backups []promptuse.BackupInfo `json:"backups"`
}
