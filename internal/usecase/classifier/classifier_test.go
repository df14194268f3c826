package classifier

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

func utt(speaker, text string, start, end float64) entities.Utterance {
	return entities.Utterance{
		Speaker:   speaker,
		Text:      text,
		Start:     start,
		End:       end,
		WordCount: len(strings.Fields(text)),
	}
}

func TestClassify_TeacherHasHigherAverage(t *testing.T) {
	utterances := []entities.Utterance{
		utt("A", "오늘은 블록으로 집을 만들어 볼까요", 0, 5),
		utt("B", "네", 5, 6),
		utt("A", "어떤 색 블록이 제일 마음에 드는지 말해 줄래요", 6, 12),
		utt("B", "빨간색", 12, 13),
	}

	got := Classify(utterances)
	if !got.IsValid {
		t.Fatalf("expected valid assignment, got reason %q", got.Reason)
	}
	if got.TeacherID != "A" || got.ChildID != "B" {
		t.Fatalf("expected teacher=A child=B, got teacher=%s child=%s", got.TeacherID, got.ChildID)
	}
}

func TestClassify_TieGoesToSecondSpeaker(t *testing.T) {
	// Equal average words per utterance: the strict comparison leaves
	// the second-appearing speaker as teacher.
	utterances := []entities.Utterance{
		utt("A", "하나 둘 셋", 0, 3),
		utt("B", "넷 다섯 여섯", 3, 6),
	}

	got := Classify(utterances)
	if !got.IsValid {
		t.Fatalf("expected valid assignment, got reason %q", got.Reason)
	}
	if got.TeacherID != "B" || got.ChildID != "A" {
		t.Fatalf("expected tie to assign teacher=B, got teacher=%s", got.TeacherID)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	utterances := []entities.Utterance{
		utt("A", "오늘은 블록으로 집을 만들어 볼까요", 0, 5),
		utt("B", "네", 5, 6),
		utt("A", "어떤 색 블록이 제일 마음에 드는지 말해 줄래요", 6, 12),
		utt("B", "빨간색", 12, 13),
	}

	first := Classify(utterances)
	second := Classify(utterances)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input must classify identically:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassify_TooFewUtterances(t *testing.T) {
	got := Classify([]entities.Utterance{utt("A", "안녕", 0, 1)})
	if got.IsValid {
		t.Fatal("expected invalid assignment")
	}
	if got.Reason != "화자가 2명 미만입니다." {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
	if got.TeacherID != "" || got.ChildID != "" {
		t.Fatal("invalid assignment must not carry role ids")
	}
}

func TestClassify_WrongSpeakerCount(t *testing.T) {
	utterances := []entities.Utterance{
		utt("A", "안녕하세요", 0, 2),
		utt("B", "안녕", 2, 3),
		utt("C", "저도 있어요", 3, 5),
	}

	got := Classify(utterances)
	if got.IsValid {
		t.Fatal("expected invalid assignment for 3 speakers")
	}
	if got.Reason != "화자가 3명입니다. 교사-아동 대화는 2명이어야 합니다." {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestComputeSpeakerStats_Percentages(t *testing.T) {
	utterances := []entities.Utterance{
		utt("A", "하나 둘 셋", 0, 6),
		utt("B", "넷", 6, 8),
	}

	stats := ComputeSpeakerStats(utterances)
	a := stats["A"]
	if a.UtteranceCount != 1 || a.TotalWords != 3 {
		t.Fatalf("unexpected stats for A: %+v", a)
	}
	if a.SpeakingTimePercent != 75 {
		t.Fatalf("expected 75%% speaking time, got %v", a.SpeakingTimePercent)
	}
	if a.WordPercent != 75 {
		t.Fatalf("expected 75%% word share, got %v", a.WordPercent)
	}
}

func TestComputeSpeakerStats_ZeroTotals(t *testing.T) {
	utterances := []entities.Utterance{
		{Speaker: "A", Text: "", Start: 1, End: 1},
		{Speaker: "B", Text: "", Start: 2, End: 2},
	}

	stats := ComputeSpeakerStats(utterances)
	for speaker, s := range stats {
		if s.SpeakingTimePercent != 0 || s.WordPercent != 0 {
			t.Fatalf("expected zero percentages for %s, got %+v", speaker, s)
		}
	}
}

func TestCalculateSpeakingBalance(t *testing.T) {
	assignment := entities.RoleAssignment{
		IsValid:   true,
		TeacherID: "A",
		ChildID:   "B",
		Stats: map[string]entities.SpeakerStats{
			"A": {TotalTime: 70, SpeakingTimePercent: 70, WordPercent: 65},
			"B": {TotalTime: 30, SpeakingTimePercent: 30, WordPercent: 35},
		},
	}

	balance := CalculateSpeakingBalance(assignment)
	if balance == nil {
		t.Fatal("expected balance for valid assignment")
	}
	if balance.BalanceScore != 80 {
		t.Fatalf("expected score 80, got %v", balance.BalanceScore)
	}
	if balance.BalanceLevel != "매우 균형적" {
		t.Fatalf("unexpected level %q", balance.BalanceLevel)
	}
	if balance.DominantSpeaker != "A" {
		t.Fatalf("unexpected dominant speaker %q", balance.DominantSpeaker)
	}
}

func TestCalculateSpeakingBalance_InvalidAssignment(t *testing.T) {
	if got := CalculateSpeakingBalance(entities.RoleAssignment{IsValid: false}); got != nil {
		t.Fatalf("expected nil balance, got %+v", got)
	}
}
