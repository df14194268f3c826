package conversation

import (
	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/usecase/classifier"
)

// DetailResponse is the full conversation document plus derived
// speaking-balance figures.
type DetailResponse struct {
	*entities.ConversationSession
	SpeakingBalance *classifier.SpeakingBalance `json:"speaking_balance,omitempty"`
}

// StatusResponse reports which analyses have completed for a conversation
type StatusResponse struct {
	ConversationID string                         `json:"conversation_id"`
	Complete       bool                           `json:"complete"`
	Analyses       map[entities.AnalysisKind]bool `json:"analyses"`
}

// ListResponse wraps conversation summaries
type ListResponse struct {
	Total         int                            `json:"total"`
	Conversations []entities.ConversationSummary `json:"conversations"`
}
