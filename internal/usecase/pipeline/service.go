package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
	"github.com/kindcoach/kindcoach-api/internal/usecase/classifier"
	"github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
	"github.com/kindcoach/kindcoach-api/pkg/ai"
)

// ValidationError rejects a request before any collaborator is invoked.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// RoleRejectedError rejects a recording whose speakers cannot be assigned
// teacher/child roles. Nothing is persisted for the recording.
type RoleRejectedError struct {
	Reason string
}

func (e *RoleRejectedError) Error() string { return e.Reason }

// Transcriber converts audio bytes into a diarized transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (*ai.TranscriptionResult, error)
}

// ChatCompleter runs one LLM chat completion.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*ai.ChatResult, error)
}

// Archiver stores original recordings.
type Archiver interface {
	StoreRecording(ctx context.Context, owner, fileName string, reader io.Reader, size int64, contentType string) (string, error)
}

// Service orchestrates the analysis pipeline: archive the upload,
// transcribe, classify speaker roles, persist the session and run LLM
// analyses. Every stage runs synchronously in the caller's request; a
// failed stage is reported once, with no automatic retry.
type Service struct {
	transcriber Transcriber
	chat        ChatCompleter
	archive     Archiver
	prompts     *prompt.Manager
	sessions    *analysis.Manager
	model       string
	logger      *zap.Logger
}

// NewService creates a pipeline service
func NewService(
	transcriber Transcriber,
	chat ChatCompleter,
	archive Archiver,
	prompts *prompt.Manager,
	sessions *analysis.Manager,
	model string,
	logger *zap.Logger,
) *Service {
	return &Service{
		transcriber: transcriber,
		chat:        chat,
		archive:     archive,
		prompts:     prompts,
		sessions:    sessions,
		model:       model,
		logger:      logger,
	}
}

// ProcessUpload runs the full pipeline for one uploaded recording and
// returns the created session. The comprehensive analysis runs as part of
// creation; its result is recorded whether it succeeded or failed, and a
// failed analysis does not fail the upload.
func (s *Service) ProcessUpload(
	ctx context.Context,
	owner string,
	fileName string,
	size int64,
	contentType string,
	audio io.Reader,
	metadata entities.ConversationMetadata,
) (*entities.ConversationSession, error) {
	if err := ValidateAudioFile(fileName, size); err != nil {
		return nil, err
	}
	fileName = SanitizeFileName(fileName)
	metadata.FileName = fileName

	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	s.logger.Info("🔄 Archiving recording",
		zap.String("owner", owner),
		zap.String("file_name", fileName),
		zap.Int("size", len(data)))
	objectName, err := s.archive.StoreRecording(ctx, owner, fileName, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to archive recording: %w", err)
	}
	metadata.RecordingURL = objectName

	s.logger.Info("🔄 Transcribing audio", zap.String("owner", owner))
	transcript, err := s.transcriber.Transcribe(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	utterances := make([]entities.Utterance, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		utterances = append(utterances, entities.Utterance{
			Speaker:    u.Speaker,
			Text:       u.Text,
			Start:      u.Start,
			End:        u.End,
			Confidence: u.Confidence,
			WordCount:  u.WordCount,
		})
	}

	assignment := classifier.Classify(utterances)
	if !assignment.IsValid {
		s.logger.Warn("❌ Speaker role classification rejected recording",
			zap.String("owner", owner),
			zap.String("reason", assignment.Reason))
		return nil, &RoleRejectedError{Reason: assignment.Reason}
	}

	session := &entities.ConversationSession{
		ConversationID: GenerateConversationID(transcript.Text),
		Owner:          owner,
		Metadata:       metadata,
		Transcription: entities.Transcription{
			Text:       transcript.Text,
			Confidence: transcript.Confidence,
			Duration:   transcript.Duration,
			Utterances: utterances,
		},
		RoleAssignment: assignment,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	// The comprehensive analysis is part of session creation. Its
	// failure is recorded on the session, not propagated.
	if _, err := s.RunAnalysis(ctx, owner, session.ConversationID, entities.AnalysisComprehensive); err != nil {
		s.logger.Warn("❌ Comprehensive analysis could not run",
			zap.String("conversation_id", session.ConversationID),
			zap.Error(err))
	}

	return s.sessions.GetSession(ctx, owner, session.ConversationID)
}

type kindConfig struct {
	name         string
	systemPrompt string
	temperature  float64
	maxTokens    int
}

var kindConfigs = map[entities.AnalysisKind]kindConfig{
	entities.AnalysisComprehensive: {
		name:         "종합 분석",
		systemPrompt: "당신은 유아교육과 아동 심리학 분야의 전문가입니다. 교사들에게 따뜻하고 실용적인 코칭을 제공합니다.",
		temperature:  0.7,
		maxTokens:    2000,
	},
	entities.AnalysisQuickFeedback: {
		name:         "빠른 피드백",
		systemPrompt: "유아교육 전문가로서 교사들에게 격려적이고 실용적인 피드백을 제공합니다.",
		temperature:  0.6,
		maxTokens:    800,
	},
	entities.AnalysisChildDevelopment: {
		name:         "발달 분석",
		systemPrompt: "아동 발달 전문가로서 과학적이고 체계적인 발달 분석을 제공합니다.",
		temperature:  0.5,
		maxTokens:    1500,
	},
	entities.AnalysisCoachingTips: {
		name:         "코칭 팁",
		systemPrompt: "교사 코칭 전문가로서 실용적이고 적용 가능한 조언을 제공합니다.",
		temperature:  0.7,
		maxTokens:    1200,
	},
	entities.AnalysisSentimentInterpretation: {
		name:         "감정 해석",
		systemPrompt: "감정과 소통 전문가로서 교사의 감정 인식과 대응 능력 향상을 돕습니다.",
		temperature:  0.6,
		maxTokens:    1000,
	},
}

// RunAnalysis executes one analysis kind for a stored session and records
// the outcome. Collaborator failures come back as a recorded failure
// result, not an error; errors are reserved for validation problems and
// storage faults.
func (s *Service) RunAnalysis(ctx context.Context, owner, conversationID string, kind entities.AnalysisKind) (*entities.AnalysisResult, error) {
	cfg, ok := kindConfigs[kind]
	if !ok {
		return nil, entities.ErrInvalidAnalysisKind
	}

	session, err := s.sessions.GetSession(ctx, owner, conversationID)
	if err != nil {
		return nil, err
	}

	vars, err := s.buildVariables(session, kind)
	if err != nil {
		return nil, err
	}

	promptID, ok := prompt.IDForKind(kind)
	if !ok {
		return nil, entities.ErrInvalidAnalysisKind
	}
	template, err := s.prompts.GetTemplate(promptID)
	if err != nil {
		return nil, err
	}
	if validation := s.prompts.Validate(promptID, template); !validation.Valid {
		return nil, &ValidationError{Reason: fmt.Sprintf("프롬프트 템플릿이 유효하지 않습니다: %v", validation.Errors)}
	}
	userPrompt := renderTemplate(template, vars)

	s.logger.Info("🔄 Running analysis",
		zap.String("conversation_id", conversationID),
		zap.String("analysis_type", string(kind)))

	result := entities.AnalysisResult{
		AnalysisType: kind,
		Timestamp:    time.Now(),
	}
	chatResult, err := s.chat.ChatCompletion(ctx, cfg.systemPrompt, userPrompt, cfg.temperature, cfg.maxTokens)
	if err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("OpenAI API 호출 실패 (%s): %v", cfg.name, err)
	} else {
		result.Success = true
		result.Analysis = chatResult.Content
		result.Model = s.model
		result.TokenUsage = &entities.TokenUsage{
			PromptTokens:     chatResult.Usage.PromptTokens,
			CompletionTokens: chatResult.Usage.CompletionTokens,
			TotalTokens:      chatResult.Usage.TotalTokens,
		}
	}

	if err := s.sessions.RecordResult(ctx, owner, conversationID, result); err != nil {
		return nil, err
	}
	return &result, nil
}

// buildVariables assembles the prompt variables for one analysis kind.
func (s *Service) buildVariables(session *entities.ConversationSession, kind entities.AnalysisKind) (map[string]string, error) {
	transcript := session.Transcription.Text

	switch kind {
	case entities.AnalysisComprehensive:
		var teacherStats, childStats *entities.SpeakerStats
		if stats, ok := session.RoleAssignment.Stats[session.RoleAssignment.TeacherID]; ok {
			teacherStats = &stats
		}
		if stats, ok := session.RoleAssignment.Stats[session.RoleAssignment.ChildID]; ok {
			childStats = &stats
		}
		return map[string]string{
			"transcript":         transcript,
			"teacher_info":       formatSpeakerInfo(teacherStats, "교사"),
			"child_info":         formatSpeakerInfo(childStats, "아동"),
			"sentiment_analysis": noSentimentData,
		}, nil

	case entities.AnalysisQuickFeedback:
		if strings.TrimSpace(transcript) == "" {
			return nil, &ValidationError{Reason: "전사본이 비어있어 분석할 수 없습니다."}
		}
		return map[string]string{"transcript": transcript}, nil

	case entities.AnalysisChildDevelopment:
		return map[string]string{
			"transcript":       transcript,
			"child_utterances": formatChildUtterances(s.childSegments(session)),
		}, nil

	case entities.AnalysisCoachingTips:
		situation := session.Metadata.SituationType
		if situation == "" {
			situation = defaultSituation
		}
		return map[string]string{
			"situation":  situation,
			"transcript": transcript,
		}, nil

	case entities.AnalysisSentimentInterpretation:
		return map[string]string{
			"sentiment_data": noSentimentData,
			"context":        fmt.Sprintf("교사-아동 상호작용 (%g초)", session.Transcription.Duration),
		}, nil
	}
	return nil, entities.ErrInvalidAnalysisKind
}

// childSegments picks the child's utterances. With no assigned child id,
// the speaker with the least total speaking time is assumed to be the
// child; with no matching segments at all, the full conversation is used.
func (s *Service) childSegments(session *entities.ConversationSession) []entities.Utterance {
	utterances := session.Transcription.Utterances
	childID := session.RoleAssignment.ChildID

	if childID == "" {
		totals := make(map[string]float64)
		for _, u := range utterances {
			totals[u.Speaker] += u.Duration()
		}
		var least string
		for _, u := range utterances {
			if least == "" || totals[u.Speaker] < totals[least] {
				least = u.Speaker
			}
		}
		childID = least
		s.logger.Warn("🔍 No child speaker assigned, assuming the quietest speaker",
			zap.String("conversation_id", session.ConversationID),
			zap.String("assumed_child", childID))
	}

	var segments []entities.Utterance
	for _, u := range utterances {
		if u.Speaker == childID {
			segments = append(segments, u)
		}
	}
	if len(segments) == 0 {
		s.logger.Warn("⚠️ No child utterances found, analyzing the full conversation",
			zap.String("conversation_id", session.ConversationID))
		return utterances
	}
	return segments
}
