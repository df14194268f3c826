package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/domain/repositories"
)

// Manager owns the lifecycle of conversation sessions: creation after a
// successful pipeline run, recording per-kind analysis results, lookups,
// search and deletion. Concurrent writers are last-write-wins; each write
// replaces the whole document.
type Manager struct {
	repo   repositories.ConversationRepository
	logger *zap.Logger
}

// NewManager creates a session manager
func NewManager(repo repositories.ConversationRepository, logger *zap.Logger) *Manager {
	return &Manager{
		repo:   repo,
		logger: logger,
	}
}

// CreateSession persists a new session document.
func (m *Manager) CreateSession(ctx context.Context, session *entities.ConversationSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastUpdated = now
	if session.Results == nil {
		session.Results = make(map[entities.AnalysisKind]entities.AnalysisResult)
	}

	if err := m.repo.Save(ctx, session); err != nil {
		return err
	}
	m.logger.Info("✅ Conversation session created",
		zap.String("conversation_id", session.ConversationID),
		zap.String("owner", session.Owner))
	return nil
}

// RecordResult stores one analysis result on the session, success or
// failure, and bumps the update timestamp.
func (m *Manager) RecordResult(ctx context.Context, owner, conversationID string, result entities.AnalysisResult) error {
	session, err := m.repo.FindByID(ctx, owner, conversationID)
	if err != nil {
		return err
	}

	if session.Results == nil {
		session.Results = make(map[entities.AnalysisKind]entities.AnalysisResult)
	}
	session.Results[result.AnalysisType] = result
	session.LastUpdated = time.Now()

	if err := m.repo.Save(ctx, session); err != nil {
		return err
	}
	m.logger.Info("✅ Analysis result recorded",
		zap.String("conversation_id", conversationID),
		zap.String("analysis_type", string(result.AnalysisType)),
		zap.Bool("success", result.Success))
	return nil
}

// GetSession loads one session.
func (m *Manager) GetSession(ctx context.Context, owner, conversationID string) (*entities.ConversationSession, error) {
	return m.repo.FindByID(ctx, owner, conversationID)
}

// GetResult returns one analysis result of a session.
func (m *Manager) GetResult(ctx context.Context, owner, conversationID string, kind entities.AnalysisKind) (*entities.AnalysisResult, error) {
	session, err := m.repo.FindByID(ctx, owner, conversationID)
	if err != nil {
		return nil, err
	}
	result, ok := session.Results[kind]
	if !ok {
		return nil, fmt.Errorf("no %s result for %s: %w", kind, conversationID, entities.ErrConversationNotFound)
	}
	return &result, nil
}

// GetCompletionMap returns per-kind completion for a session.
func (m *Manager) GetCompletionMap(ctx context.Context, owner, conversationID string) (map[entities.AnalysisKind]bool, error) {
	session, err := m.repo.FindByID(ctx, owner, conversationID)
	if err != nil {
		return nil, err
	}
	return session.CompletionMap(), nil
}

// List returns the owner's session summaries.
func (m *Manager) List(ctx context.Context, owner string) ([]entities.ConversationSummary, error) {
	return m.repo.List(ctx, owner)
}

// ListAll returns every session summary.
func (m *Manager) ListAll(ctx context.Context) ([]entities.ConversationSummary, error) {
	return m.repo.ListAll(ctx)
}

// Search returns the owner's summaries matching the query.
func (m *Manager) Search(ctx context.Context, owner, query string) ([]entities.ConversationSummary, error) {
	return m.repo.Search(ctx, owner, query)
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, owner, conversationID string) error {
	if err := m.repo.Delete(ctx, owner, conversationID); err != nil {
		return err
	}
	m.logger.Info("✅ Conversation session deleted",
		zap.String("conversation_id", conversationID),
		zap.String("owner", owner))
	return nil
}
