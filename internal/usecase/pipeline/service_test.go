package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/adapter/repository"
	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/blobstore"
	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
	"github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
	"github.com/kindcoach/kindcoach-api/pkg/ai"
)

type fakeTranscriber struct {
	result *ai.TranscriptionResult
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader) (*ai.TranscriptionResult, error) {
	return f.result, f.err
}

type fakeChat struct {
	content  string
	err      error
	lastUser string
	lastSys  string
	calls    int
}

func (f *fakeChat) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*ai.ChatResult, error) {
	f.calls++
	f.lastSys = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return nil, f.err
	}
	return &ai.ChatResult{
		Content: f.content,
		Usage:   ai.ChatUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

type fakeArchive struct {
	objects []string
	err     error
}

func (f *fakeArchive) StoreRecording(ctx context.Context, owner, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name := owner + "/" + fileName
	f.objects = append(f.objects, name)
	return name, nil
}

func twoSpeakerTranscript() *ai.TranscriptionResult {
	return &ai.TranscriptionResult{
		Text:       "오늘은 블록으로 집을 만들어 볼까요 네 좋아요",
		Confidence: 0.9,
		Duration:   42.5,
		Utterances: []ai.TranscriptUtterance{
			{Speaker: "A", Text: "오늘은 블록으로 집을 만들어 볼까요", Start: 0, End: 5, Confidence: 0.95, WordCount: 6},
			{Speaker: "B", Text: "네 좋아요", Start: 5, End: 7, Confidence: 0.9, WordCount: 2},
		},
	}
}

func newTestService(t *testing.T, transcriber *fakeTranscriber, chat *fakeChat, archive *fakeArchive) (*Service, *analysis.Manager) {
	t.Helper()
	store, err := blobstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	sessions := analysis.NewManager(repository.NewConversationRepository(store), zap.NewNop())

	dir := t.TempDir()
	prompts, err := prompt.NewManager(filepath.Join(dir, "prompts.json"), filepath.Join(dir, "backups"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create prompt manager: %v", err)
	}

	return NewService(transcriber, chat, archive, prompts, sessions, "gpt-4o-mini", zap.NewNop()), sessions
}

func TestProcessUpload_FullPipeline(t *testing.T) {
	chat := &fakeChat{content: "종합 분석 내용"}
	archive := &fakeArchive{}
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, chat, archive)

	session, err := svc.ProcessUpload(
		context.Background(),
		"alice",
		"recording.mp3",
		1024,
		"audio/mpeg",
		strings.NewReader("fake-audio"),
		entities.ConversationMetadata{ChildName: "민준", SituationType: "자유 놀이"},
	)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if !strings.HasPrefix(session.ConversationID, "conv_") {
		t.Fatalf("unexpected conversation id %q", session.ConversationID)
	}
	if session.RoleAssignment.TeacherID != "A" || session.RoleAssignment.ChildID != "B" {
		t.Fatalf("unexpected role assignment %+v", session.RoleAssignment)
	}
	if len(archive.objects) != 1 {
		t.Fatalf("expected recording archived, got %v", archive.objects)
	}
	if session.Metadata.RecordingURL == "" {
		t.Fatal("expected recording object recorded in metadata")
	}

	result, ok := session.Results[entities.AnalysisComprehensive]
	if !ok || !result.Success {
		t.Fatalf("expected successful comprehensive result, got %+v", result)
	}
	if result.Model != "gpt-4o-mini" || result.TokenUsage == nil {
		t.Fatalf("expected model and token usage recorded, got %+v", result)
	}
	if chat.lastSys == "" || !strings.Contains(chat.lastUser, session.Transcription.Text) {
		t.Fatal("expected transcript interpolated into the prompt")
	}
}

func TestProcessUpload_RejectsWrongSpeakerCount(t *testing.T) {
	transcript := twoSpeakerTranscript()
	transcript.Utterances = append(transcript.Utterances, ai.TranscriptUtterance{
		Speaker: "C", Text: "저도요", Start: 7, End: 8, Confidence: 0.9, WordCount: 1,
	})
	svc, sessions := newTestService(t, &fakeTranscriber{result: transcript}, &fakeChat{}, &fakeArchive{})

	_, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake-audio"), entities.ConversationMetadata{},
	)
	var rejected *RoleRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RoleRejectedError, got %v", err)
	}
	if rejected.Reason != "화자가 3명입니다. 교사-아동 대화는 2명이어야 합니다." {
		t.Fatalf("unexpected reason %q", rejected.Reason)
	}

	// Nothing persisted for a rejected recording.
	all, err := sessions.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no sessions, got %d", len(all))
	}
}

func TestProcessUpload_RejectsBadFile(t *testing.T) {
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, &fakeChat{}, &fakeArchive{})

	_, err := svc.ProcessUpload(
		context.Background(), "alice", "notes.txt", 1024, "text/plain",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = svc.ProcessUpload(
		context.Background(), "alice", "big.mp3", 51*1024*1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	if !errors.As(err, &invalid) {
		t.Fatalf("expected size ValidationError, got %v", err)
	}
}

func TestProcessUpload_TranscriptionFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakeTranscriber{err: fmt.Errorf("전사 실패: upstream down")}, &fakeChat{}, &fakeArchive{})

	_, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	if err == nil || !strings.Contains(err.Error(), "전사 실패") {
		t.Fatalf("expected transcription error, got %v", err)
	}
}

func TestProcessUpload_AnalysisFailureStillCreatesSession(t *testing.T) {
	chat := &fakeChat{err: fmt.Errorf("rate limited")}
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, chat, &fakeArchive{})

	session, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	if err != nil {
		t.Fatalf("upload must survive analysis failure, got %v", err)
	}

	result, ok := session.Results[entities.AnalysisComprehensive]
	if !ok {
		t.Fatal("expected failed result to be recorded")
	}
	if result.Success {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Error, "OpenAI API 호출 실패 (종합 분석)") {
		t.Fatalf("unexpected error message %q", result.Error)
	}
}

func TestRunAnalysis_CoachingTipsUsesSituation(t *testing.T) {
	chat := &fakeChat{content: "팁"}
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, chat, &fakeArchive{})

	session, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{SituationType: "간식 시간"},
	)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if _, err := svc.RunAnalysis(context.Background(), "alice", session.ConversationID, entities.AnalysisCoachingTips); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if !strings.Contains(chat.lastUser, "간식 시간") {
		t.Fatal("expected situation interpolated into the prompt")
	}
}

func TestRunAnalysis_ChildDevelopmentUsesChildUtterances(t *testing.T) {
	chat := &fakeChat{content: "발달 분석"}
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, chat, &fakeArchive{})

	session, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if _, err := svc.RunAnalysis(context.Background(), "alice", session.ConversationID, entities.AnalysisChildDevelopment); err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	// Child is speaker B; the child block carries timestamped lines.
	if !strings.Contains(chat.lastUser, "[5.0s] 네 좋아요") {
		t.Fatalf("expected child utterance block, prompt was %q", chat.lastUser)
	}
	if strings.Contains(chat.lastUser, "[0.0s] 오늘은 블록으로") {
		t.Fatal("teacher utterances must not be in the child block")
	}
}

func TestRunAnalysis_QuickFeedbackRejectsEmptyTranscript(t *testing.T) {
	transcript := twoSpeakerTranscript()
	transcript.Text = "   "
	chat := &fakeChat{content: "x"}
	svc, _ := newTestService(t, &fakeTranscriber{result: transcript}, chat, &fakeArchive{})

	session, err := svc.ProcessUpload(
		context.Background(), "alice", "recording.mp3", 1024, "audio/mpeg",
		strings.NewReader("fake"), entities.ConversationMetadata{},
	)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	callsBefore := chat.calls
	_, err = svc.RunAnalysis(context.Background(), "alice", session.ConversationID, entities.AnalysisQuickFeedback)
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if invalid.Reason != "전사본이 비어있어 분석할 수 없습니다." {
		t.Fatalf("unexpected reason %q", invalid.Reason)
	}
	if chat.calls != callsBefore {
		t.Fatal("no LLM call may happen for an invalid request")
	}
}

func TestRunAnalysis_UnknownKind(t *testing.T) {
	svc, _ := newTestService(t, &fakeTranscriber{result: twoSpeakerTranscript()}, &fakeChat{}, &fakeArchive{})
	if _, err := svc.RunAnalysis(context.Background(), "alice", "conv_x", entities.AnalysisKind("nope")); !errors.Is(err, entities.ErrInvalidAnalysisKind) {
		t.Fatalf("expected ErrInvalidAnalysisKind, got %v", err)
	}
}
