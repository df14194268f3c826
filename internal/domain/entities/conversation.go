package entities

import (
	"time"
)

// AnalysisKind identifies one of the coaching analysis types.
type AnalysisKind string

const (
	AnalysisComprehensive           AnalysisKind = "comprehensive"
	AnalysisQuickFeedback           AnalysisKind = "quick_feedback"
	AnalysisChildDevelopment        AnalysisKind = "child_development"
	AnalysisCoachingTips            AnalysisKind = "coaching_tips"
	AnalysisSentimentInterpretation AnalysisKind = "sentiment_interpretation"
)

// AllAnalysisKinds lists every analysis type in report order.
var AllAnalysisKinds = []AnalysisKind{
	AnalysisComprehensive,
	AnalysisQuickFeedback,
	AnalysisChildDevelopment,
	AnalysisCoachingTips,
	AnalysisSentimentInterpretation,
}

// IsValidAnalysisKind reports whether s names a known analysis type.
func IsValidAnalysisKind(s string) bool {
	for _, k := range AllAnalysisKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// TokenUsage reports LLM token consumption for one analysis call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AnalysisResult is the outcome of a single analysis run, success or
// failure. Failed runs are recorded alongside successful ones.
type AnalysisResult struct {
	Success      bool         `json:"success"`
	AnalysisType AnalysisKind `json:"analysis_type"`
	Analysis     string       `json:"analysis,omitempty"`
	Error        string       `json:"error,omitempty"`
	Model        string       `json:"model,omitempty"`
	TokenUsage   *TokenUsage  `json:"token_usage,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ConversationMetadata is the operator-entered context for a recording.
type ConversationMetadata struct {
	TeacherName   string `json:"teacher_name,omitempty"`
	ChildName     string `json:"child_name,omitempty"`
	ChildAge      int    `json:"child_age,omitempty"`
	SituationType string `json:"situation_type,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	Description   string `json:"description,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	RecordingURL  string `json:"recording_url,omitempty"`
}

// Transcription is the stored transcription payload of a session.
type Transcription struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Duration   float64     `json:"duration"`
	Utterances []Utterance `json:"utterances"`
}

// ConversationSession is the complete persisted state of one analyzed
// conversation: one self-contained document per session.
type ConversationSession struct {
	ConversationID string                          `json:"conversation_id"`
	Owner          string                          `json:"owner"`
	CreatedAt      time.Time                       `json:"created_at"`
	LastUpdated    time.Time                       `json:"last_updated"`
	Metadata       ConversationMetadata            `json:"metadata"`
	Transcription  Transcription                   `json:"transcription"`
	RoleAssignment RoleAssignment                  `json:"role_assignment"`
	Results        map[AnalysisKind]AnalysisResult `json:"analysis_results"`
}

// TranscriptPreview returns the first 100 characters of the transcript
// with a trailing ellipsis for longer texts.
func (s *ConversationSession) TranscriptPreview() string {
	runes := []rune(s.Transcription.Text)
	if len(runes) <= 100 {
		return s.Transcription.Text
	}
	return string(runes[:100]) + "..."
}

// HasResult reports whether a successful result exists for the kind.
func (s *ConversationSession) HasResult(kind AnalysisKind) bool {
	r, ok := s.Results[kind]
	return ok && r.Success
}

// CompletionMap reports per-kind completion over all analysis types.
func (s *ConversationSession) CompletionMap() map[AnalysisKind]bool {
	m := make(map[AnalysisKind]bool, len(AllAnalysisKinds))
	for _, k := range AllAnalysisKinds {
		m[k] = s.HasResult(k)
	}
	return m
}

// IsComplete reports whether every analysis kind has a successful result.
func (s *ConversationSession) IsComplete() bool {
	for _, k := range AllAnalysisKinds {
		if !s.HasResult(k) {
			return false
		}
	}
	return true
}

// ConversationSummary is the listing projection of a session.
type ConversationSummary struct {
	ConversationID string                `json:"conversation_id"`
	Owner          string                `json:"owner"`
	CreatedAt      time.Time             `json:"created_at"`
	LastUpdated    time.Time             `json:"last_updated"`
	Preview        string                `json:"preview"`
	Metadata       ConversationMetadata  `json:"metadata"`
	Completion     map[AnalysisKind]bool `json:"completion"`
}

// Summary builds the listing projection for the session.
func (s *ConversationSession) Summary() ConversationSummary {
	return ConversationSummary{
		ConversationID: s.ConversationID,
		Owner:          s.Owner,
		CreatedAt:      s.CreatedAt,
		LastUpdated:    s.LastUpdated,
		Preview:        s.TranscriptPreview(),
		Metadata:       s.Metadata,
		Completion:     s.CompletionMap(),
	}
}
