package classifier

import (
	"fmt"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// speakerOrder returns the speaker ids in order of first appearance.
// Map iteration order is not stable, so ordering is tracked explicitly.
func speakerOrder(utterances []entities.Utterance) []string {
	seen := make(map[string]bool)
	var order []string
	for _, u := range utterances {
		if !seen[u.Speaker] {
			seen[u.Speaker] = true
			order = append(order, u.Speaker)
		}
	}
	return order
}

// ComputeSpeakerStats aggregates per-speaker activity. Percentages are
// against the grand totals and are 0 when the respective total is 0.
func ComputeSpeakerStats(utterances []entities.Utterance) map[string]entities.SpeakerStats {
	type acc struct {
		count      int
		words      int
		time       float64
		confidence float64
	}
	accs := make(map[string]*acc)
	var totalWords int
	var totalTime float64
	for _, u := range utterances {
		a, ok := accs[u.Speaker]
		if !ok {
			a = &acc{}
			accs[u.Speaker] = a
		}
		a.count++
		a.words += u.WordCount
		a.time += u.Duration()
		a.confidence += u.Confidence
		totalWords += u.WordCount
		totalTime += u.Duration()
	}

	stats := make(map[string]entities.SpeakerStats, len(accs))
	for speaker, a := range accs {
		s := entities.SpeakerStats{
			UtteranceCount: a.count,
			TotalWords:     a.words,
			TotalTime:      a.time,
		}
		if a.count > 0 {
			s.AvgWordsPerUtterance = float64(a.words) / float64(a.count)
			s.AvgConfidence = a.confidence / float64(a.count)
		}
		if totalTime > 0 {
			s.SpeakingTimePercent = a.time / totalTime * 100
		}
		if totalWords > 0 {
			s.WordPercent = float64(a.words) / float64(totalWords) * 100
		}
		stats[speaker] = s
	}
	return stats
}

// Classify assigns teacher/child roles to the speakers of a diarized
// conversation. Exactly two speakers are required. The speaker with the
// strictly higher average words per utterance is labeled the teacher;
// on a tie the later-appearing speaker is the teacher.
func Classify(utterances []entities.Utterance) entities.RoleAssignment {
	if len(utterances) < 2 {
		return entities.RoleAssignment{
			IsValid: false,
			Reason:  "화자가 2명 미만입니다.",
		}
	}

	order := speakerOrder(utterances)
	if len(order) != 2 {
		return entities.RoleAssignment{
			IsValid: false,
			Reason:  fmt.Sprintf("화자가 %d명입니다. 교사-아동 대화는 2명이어야 합니다.", len(order)),
		}
	}

	stats := ComputeSpeakerStats(utterances)
	speaker1, speaker2 := order[0], order[1]

	teacherID, childID := speaker2, speaker1
	if stats[speaker1].AvgWordsPerUtterance > stats[speaker2].AvgWordsPerUtterance {
		teacherID, childID = speaker1, speaker2
	}

	return entities.RoleAssignment{
		IsValid:   true,
		TeacherID: teacherID,
		ChildID:   childID,
		Stats:     stats,
	}
}
