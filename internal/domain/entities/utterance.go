package entities

// Utterance is one diarized speech segment. Times are seconds from the
// start of the recording.
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`
}

// Duration returns the speaking time of the segment in seconds.
func (u Utterance) Duration() float64 {
	return u.End - u.Start
}

// SpeakerStats aggregates one speaker's activity across a conversation.
// Percentages are relative to the totals over all speakers.
type SpeakerStats struct {
	UtteranceCount       int     `json:"utterance_count"`
	TotalWords           int     `json:"total_words"`
	TotalTime            float64 `json:"total_time"`
	AvgWordsPerUtterance float64 `json:"avg_words_per_utterance"`
	AvgConfidence        float64 `json:"avg_confidence"`
	SpeakingTimePercent  float64 `json:"time_percentage"`
	WordPercent          float64 `json:"word_percentage"`
}

// RoleAssignment is the outcome of teacher/child speaker classification.
// When IsValid is false, Reason explains the rejection and the id fields
// are empty.
type RoleAssignment struct {
	IsValid   bool                    `json:"is_valid"`
	Reason    string                  `json:"reason,omitempty"`
	TeacherID string                  `json:"teacher_id,omitempty"`
	ChildID   string                  `json:"child_id,omitempty"`
	Stats     map[string]SpeakerStats `json:"speaker_stats,omitempty"`
}
