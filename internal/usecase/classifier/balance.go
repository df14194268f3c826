package classifier

import (
	"math"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// SpeakingBalance summarizes how evenly the two speakers shared the
// conversation.
type SpeakingBalance struct {
	BalanceScore    float64 `json:"balance_score"`
	BalanceLevel    string  `json:"balance_level"`
	DominantSpeaker string  `json:"dominant_speaker"`
}

// CalculateSpeakingBalance scores conversation balance from the speaker
// stats of a valid role assignment. 100 means a perfect 50/50 split in
// both speaking time and word share.
func CalculateSpeakingBalance(assignment entities.RoleAssignment) *SpeakingBalance {
	if !assignment.IsValid {
		return nil
	}
	teacher, ok := assignment.Stats[assignment.TeacherID]
	if !ok {
		return nil
	}

	timeImbalance := math.Abs(teacher.SpeakingTimePercent - 50)
	wordImbalance := math.Abs(teacher.WordPercent - 50)
	score := 100 - math.Max(timeImbalance, wordImbalance)

	var level string
	switch {
	case score >= 80:
		level = "매우 균형적"
	case score >= 60:
		level = "균형적"
	case score >= 40:
		level = "약간 불균형"
	default:
		level = "매우 불균형"
	}

	dominant := assignment.TeacherID
	if child, ok := assignment.Stats[assignment.ChildID]; ok && child.TotalTime > teacher.TotalTime {
		dominant = assignment.ChildID
	}

	return &SpeakingBalance{
		BalanceScore:    score,
		BalanceLevel:    level,
		DominantSpeaker: dominant,
	}
}
