package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/adapter/repository"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/blobstore"
	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
	"github.com/kindcoach/kindcoach-api/internal/usecase/pipeline"
	"github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
	"github.com/kindcoach/kindcoach-api/pkg/ai"
	pkgvalidator "github.com/kindcoach/kindcoach-api/pkg/validator"
)

type stubTranscriber struct {
	result *ai.TranscriptionResult
	err    error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio io.Reader) (*ai.TranscriptionResult, error) {
	return s.result, s.err
}

type stubChat struct {
	content string
	err     error
}

func (s *stubChat) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*ai.ChatResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.ChatResult{
		Content: s.content,
		Usage:   ai.ChatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type stubArchive struct{}

func (s *stubArchive) StoreRecording(ctx context.Context, owner, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	return owner + "/" + fileName, nil
}

func diarizedTranscript() *ai.TranscriptionResult {
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

func newConversationHandler(t *testing.T, transcriber *stubTranscriber) (*Conversation, *analysis.Manager) {
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

	svc := pipeline.NewService(transcriber, &stubChat{content: "분석 결과"}, &stubArchive{}, prompts, sessions, "gpt-4o-mini", zap.NewNop())
	return NewConversation(svc, sessions, zap.NewNop()), sessions
}

func multipartUpload(t *testing.T, fileName string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-audio-bytes")); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func newEchoContext(t *testing.T, method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")
	return c, rec
}

func TestUpload_CreatesConversation(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})

	body, contentType := multipartUpload(t, "recording.mp3", map[string]string{
		"child_name":     "민준",
		"situation_type": "자유 놀이",
	})
	c, rec := newEchoContext(t, http.MethodPost, "/v1/conversations", body, contentType)

	if err := h.Upload(c); err != nil {
		t.Fatalf("upload handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ConversationID string `json:"conversation_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Data.ConversationID, "conv_") {
		t.Fatalf("unexpected conversation id %q", resp.Data.ConversationID)
	}
}

func TestUpload_RoleRejectionReturns422(t *testing.T) {
	transcript := diarizedTranscript()
	transcript.Utterances = append(transcript.Utterances, ai.TranscriptUtterance{
		Speaker: "C", Text: "저도요", Start: 7, End: 8, Confidence: 0.9, WordCount: 1,
	})
	h, _ := newConversationHandler(t, &stubTranscriber{result: transcript})

	body, contentType := multipartUpload(t, "recording.mp3", nil)
	c, rec := newEchoContext(t, http.MethodPost, "/v1/conversations", body, contentType)

	if err := h.Upload(c); err != nil {
		t.Fatalf("upload handler failed: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "교사-아동 대화는 2명이어야 합니다") {
		t.Fatalf("expected rejection reason in body, got %s", rec.Body.String())
	}
}

func TestUpload_UnsupportedFormatReturns400(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})

	body, contentType := multipartUpload(t, "notes.txt", nil)
	c, rec := newEchoContext(t, http.MethodPost, "/v1/conversations", body, contentType)

	if err := h.Upload(c); err != nil {
		t.Fatalf("upload handler failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGet_MissingConversationReturns404(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})

	c, rec := newEchoContext(t, http.MethodGet, "/v1/conversations/conv_missing", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("conv_missing")

	if err := h.Get(c); err != nil {
		t.Fatalf("get handler failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func uploadOne(t *testing.T, h *Conversation) string {
	t.Helper()
	body, contentType := multipartUpload(t, "recording.mp3", nil)
	c, rec := newEchoContext(t, http.MethodPost, "/v1/conversations", body, contentType)
	if err := h.Upload(c); err != nil {
		t.Fatalf("upload handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			ConversationID string `json:"conversation_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Data.ConversationID
}

func TestStatus_ReportsCompletionMap(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})
	conversationID := uploadOne(t, h)

	c, rec := newEchoContext(t, http.MethodGet, "/v1/conversations/"+conversationID+"/status", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(conversationID)

	if err := h.Status(c); err != nil {
		t.Fatalf("status handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Complete bool            `json:"complete"`
			Analyses map[string]bool `json:"analyses"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Data.Analyses["comprehensive"] {
		t.Fatal("expected comprehensive analysis marked complete")
	}
	if resp.Data.Complete {
		t.Fatal("session with one analysis must not be complete")
	}
}

func TestGet_IncludesSpeakingBalance(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})
	conversationID := uploadOne(t, h)

	c, rec := newEchoContext(t, http.MethodGet, "/v1/conversations/"+conversationID, nil, "")
	c.SetParamNames("id")
	c.SetParamValues(conversationID)

	if err := h.Get(c); err != nil {
		t.Fatalf("get handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			SpeakingBalance *struct {
				BalanceLevel string `json:"balance_level"`
			} `json:"speaking_balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.SpeakingBalance == nil || resp.Data.SpeakingBalance.BalanceLevel == "" {
		t.Fatalf("expected speaking balance in detail response, got %s", rec.Body.String())
	}
}

func TestExport_TextReport(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})
	conversationID := uploadOne(t, h)

	c, rec := newEchoContext(t, http.MethodGet, "/v1/conversations/"+conversationID+"/export?format=txt", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(conversationID)

	if err := h.Export(c); err != nil {
		t.Fatalf("export handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if disposition := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(disposition, conversationID+".txt") {
		t.Fatalf("unexpected content disposition %q", disposition)
	}
	if !strings.Contains(rec.Body.String(), "KindCoach 분석 리포트") {
		t.Fatal("expected report header in export body")
	}
	if !strings.Contains(rec.Body.String(), "교사:") {
		t.Fatal("expected role-labeled transcript lines")
	}
}

func TestRunAnalysis_UnknownKindReturns400(t *testing.T) {
	h, _ := newConversationHandler(t, &stubTranscriber{result: diarizedTranscript()})
	conversationID := uploadOne(t, h)

	c, rec := newEchoContext(t, http.MethodPost, "/v1/conversations/"+conversationID+"/analyses/nope", nil, "")
	c.SetParamNames("id", "kind")
	c.SetParamValues(conversationID, "nope")

	if err := h.RunAnalysis(c); err != nil {
		t.Fatalf("run analysis handler failed: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
