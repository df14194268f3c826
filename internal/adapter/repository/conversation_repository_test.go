package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/blobstore"
)

func newTestRepo(t *testing.T) (*ConversationRepository, *blobstore.Store) {
	t.Helper()
	store, err := blobstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return NewConversationRepository(store), store
}

func testSession(id, owner, text string, createdAt time.Time) *entities.ConversationSession {
	return &entities.ConversationSession{
		ConversationID: id,
		Owner:          owner,
		CreatedAt:      createdAt,
		LastUpdated:    createdAt,
		Metadata:       entities.ConversationMetadata{},
		Transcription:  entities.Transcription{Text: text},
		Results:        map[entities.AnalysisKind]entities.AnalysisResult{},
	}
}

func TestConversationRepository_SaveAndFind(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	session := testSession("conv_1", "alice", "안녕하세요", time.Now())
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "alice", "conv_1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.ConversationID != "conv_1" || got.Owner != "alice" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestConversationRepository_FindMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.FindByID(context.Background(), "alice", "nope"); !errors.Is(err, entities.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationRepository_LegacyFallback(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	// A document written before owner scoping lives flat in the root.
	legacy := testSession("conv_old", "alice", "옛날 대화", time.Now())
	if err := store.Put("conv_old", legacy); err != nil {
		t.Fatalf("seed legacy failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "alice", "conv_old")
	if err != nil {
		t.Fatalf("legacy find failed: %v", err)
	}
	if got.ConversationID != "conv_old" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := repo.Delete(ctx, "alice", "conv_old"); err != nil {
		t.Fatalf("legacy delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, "alice", "conv_old"); !errors.Is(err, entities.ErrConversationNotFound) {
		t.Fatalf("expected conversation gone, got %v", err)
	}
}

func TestConversationRepository_DeleteBothLocations(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	session := testSession("conv_dup", "alice", "텍스트", time.Now())
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Put("conv_dup", session); err != nil {
		t.Fatalf("seed legacy copy failed: %v", err)
	}

	if err := repo.Delete(ctx, "alice", "conv_dup"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if store.Exists("alice/conv_dup") || store.Exists("conv_dup") {
		t.Fatal("expected both copies removed")
	}
}

func TestConversationRepository_DeleteMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	if err := repo.Delete(context.Background(), "alice", "nope"); !errors.Is(err, entities.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationRepository_ListNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"conv_a", "conv_b", "conv_c"} {
		s := testSession(id, "alice", "텍스트", base.Add(time.Duration(i)*time.Hour))
		if err := repo.Save(ctx, s); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}

	got, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	if got[0].ConversationID != "conv_c" || got[2].ConversationID != "conv_a" {
		t.Fatalf("expected newest first, got %v then %v", got[0].ConversationID, got[2].ConversationID)
	}
}

func TestConversationRepository_ListAllIncludesLegacy(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testSession("conv_a", "alice", "a", time.Now())); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, testSession("conv_b", "bob", "b", time.Now())); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Put("conv_legacy", testSession("conv_legacy", "", "c", time.Now())); err != nil {
		t.Fatalf("seed legacy failed: %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
}

func TestConversationRepository_SearchCaseInsensitive(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	a := testSession("conv_a", "alice", "블록 놀이 중 대화", time.Now())
	a.Metadata.ChildName = "민준"
	b := testSession("conv_b", "alice", "책 읽기 시간", time.Now())
	b.Metadata.Description = "Reading Time"
	for _, s := range []*entities.ConversationSession{a, b} {
		if err := repo.Save(ctx, s); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	got, err := repo.Search(ctx, "alice", "민준")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].ConversationID != "conv_a" {
		t.Fatalf("unexpected search result %+v", got)
	}

	got, err = repo.Search(ctx, "alice", "reading")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].ConversationID != "conv_b" {
		t.Fatalf("expected case-insensitive match, got %+v", got)
	}
}

func TestConversationRepository_PreviewTruncated(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	long := ""
	for i := 0; i < 120; i++ {
		long += "가"
	}
	if err := repo.Save(ctx, testSession("conv_long", "alice", long, time.Now())); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	preview := []rune(got[0].Preview)
	if len(preview) != 103 {
		t.Fatalf("expected 100 chars plus ellipsis, got %d", len(preview))
	}
	if string(preview[100:]) != "..." {
		t.Fatalf("expected trailing ellipsis, got %q", got[0].Preview)
	}
}
