package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/blobstore"
)

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// sanitizeOwner maps an owner name to a safe directory name.
func sanitizeOwner(owner string) string {
	name := unsafeNameChars.ReplaceAllString(owner, "_")
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// ConversationRepository stores conversation sessions as one JSON document
// each. Documents live under a per-owner directory; sessions written
// before owner scoping existed live flat in the store root and are still
// readable and deletable.
type ConversationRepository struct {
	store *blobstore.Store
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(store *blobstore.Store) *ConversationRepository {
	return &ConversationRepository{
		store: store,
	}
}

func (r *ConversationRepository) ownerKey(owner, conversationID string) string {
	return sanitizeOwner(owner) + "/" + conversationID
}

// Save writes the full session document (create or overwrite)
func (r *ConversationRepository) Save(ctx context.Context, session *entities.ConversationSession) error {
	if session.ConversationID == "" {
		return fmt.Errorf("conversation id is empty")
	}
	key := r.ownerKey(session.Owner, session.ConversationID)
	if err := r.store.Put(key, session); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", session.ConversationID, err)
	}
	return nil
}

// FindByID finds a session in the owner's namespace, then in the legacy
// unscoped location
func (r *ConversationRepository) FindByID(ctx context.Context, owner, conversationID string) (*entities.ConversationSession, error) {
	var session entities.ConversationSession
	err := r.store.Get(r.ownerKey(owner, conversationID), &session)
	if errors.Is(err, blobstore.ErrNotFound) {
		err = r.store.Get(conversationID, &session)
	}
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, entities.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
	}
	return &session, nil
}

// List returns the owner's session summaries, newest first
func (r *ConversationRepository) List(ctx context.Context, owner string) ([]entities.ConversationSummary, error) {
	keys, err := r.store.List(sanitizeOwner(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations for %s: %w", owner, err)
	}
	return r.loadSummaries(keys)
}

// ListAll returns every session summary across owners and the legacy
// root, newest first
func (r *ConversationRepository) ListAll(ctx context.Context) ([]entities.ConversationSummary, error) {
	keys, err := r.store.List("")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	dirs, err := r.store.ListDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	for _, dir := range dirs {
		ownerKeys, err := r.store.List(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list conversations under %s: %w", dir, err)
		}
		keys = append(keys, ownerKeys...)
	}
	return r.loadSummaries(keys)
}

// Search returns the owner's summaries whose preview, owner, child name
// or description contains the query, case-insensitively
func (r *ConversationRepository) Search(ctx context.Context, owner, query string) ([]entities.ConversationSummary, error) {
	summaries, err := r.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var matched []entities.ConversationSummary
	for _, s := range summaries {
		haystack := strings.ToLower(strings.Join([]string{
			s.Preview,
			s.Owner,
			s.Metadata.ChildName,
			s.Metadata.Description,
		}, "\n"))
		if strings.Contains(haystack, q) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// Delete removes a session from the owner's namespace and from the
// legacy location. At least one copy must exist.
func (r *ConversationRepository) Delete(ctx context.Context, owner, conversationID string) error {
	ownerErr := r.store.Delete(r.ownerKey(owner, conversationID))
	legacyErr := r.store.Delete(conversationID)

	if errors.Is(ownerErr, blobstore.ErrNotFound) && errors.Is(legacyErr, blobstore.ErrNotFound) {
		return entities.ErrConversationNotFound
	}
	if ownerErr != nil && !errors.Is(ownerErr, blobstore.ErrNotFound) {
		return fmt.Errorf("failed to delete conversation %s: %w", conversationID, ownerErr)
	}
	if legacyErr != nil && !errors.Is(legacyErr, blobstore.ErrNotFound) {
		return fmt.Errorf("failed to delete legacy conversation %s: %w", conversationID, legacyErr)
	}
	return nil
}

func (r *ConversationRepository) loadSummaries(keys []string) ([]entities.ConversationSummary, error) {
	summaries := make([]entities.ConversationSummary, 0, len(keys))
	for _, key := range keys {
		var session entities.ConversationSession
		if err := r.store.Get(key, &session); err != nil {
			// Skip documents that disappeared between list and read.
			if errors.Is(err, blobstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		summaries = append(summaries, session.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
