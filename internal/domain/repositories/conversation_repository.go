package repositories

import (
	"context"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// ConversationRepository defines the interface for conversation session
// data access
type ConversationRepository interface {
	// Save writes the full session document (create or overwrite)
	Save(ctx context.Context, session *entities.ConversationSession) error

	// FindByID finds a session by ID within the owner's namespace,
	// falling back to the legacy unscoped location
	FindByID(ctx context.Context, owner, conversationID string) (*entities.ConversationSession, error)

	// List returns the owner's session summaries, newest first
	List(ctx context.Context, owner string) ([]entities.ConversationSummary, error)

	// ListAll returns every session summary across owners, newest first
	ListAll(ctx context.Context) ([]entities.ConversationSummary, error)

	// Search returns the owner's summaries matching the query
	Search(ctx context.Context, owner, query string) ([]entities.ConversationSummary, error)

	// Delete removes a session from the owner's namespace and from the
	// legacy location
	Delete(ctx context.Context, owner, conversationID string) error
}
