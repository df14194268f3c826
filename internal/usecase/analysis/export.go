package analysis

import (
	"fmt"
	"strings"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

var kindTitles = map[entities.AnalysisKind]string{
	entities.AnalysisComprehensive:           "종합 대화 분석",
	entities.AnalysisQuickFeedback:           "빠른 피드백",
	entities.AnalysisChildDevelopment:        "아동 발달 분석",
	entities.AnalysisCoachingTips:            "코칭 팁",
	entities.AnalysisSentimentInterpretation: "감정 해석",
}

// ExportText renders a session as a plain-text report for download.
func ExportText(session *entities.ConversationSession) string {
	var b strings.Builder

	b.WriteString("KindCoach 분석 리포트\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "대화 ID: %s\n", session.ConversationID)
	fmt.Fprintf(&b, "생성 일시: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	if session.Metadata.TeacherName != "" {
		fmt.Fprintf(&b, "교사: %s\n", session.Metadata.TeacherName)
	}
	if session.Metadata.ChildName != "" {
		fmt.Fprintf(&b, "아동: %s", session.Metadata.ChildName)
		if session.Metadata.ChildAge > 0 {
			fmt.Fprintf(&b, " (%d세)", session.Metadata.ChildAge)
		}
		b.WriteString("\n")
	}
	if session.Metadata.SituationType != "" {
		fmt.Fprintf(&b, "상황: %s\n", session.Metadata.SituationType)
	}
	if session.Metadata.Purpose != "" {
		fmt.Fprintf(&b, "분석 목적: %s\n", session.Metadata.Purpose)
	}
	fmt.Fprintf(&b, "녹음 길이: %.1f초\n", session.Transcription.Duration)

	b.WriteString("\n전사본\n------\n")
	for _, u := range session.Transcription.Utterances {
		role := u.Speaker
		switch u.Speaker {
		case session.RoleAssignment.TeacherID:
			role = "교사"
		case session.RoleAssignment.ChildID:
			role = "아동"
		}
		fmt.Fprintf(&b, "[%.1fs] %s: %s\n", u.Start, role, u.Text)
	}

	for _, kind := range entities.AllAnalysisKinds {
		result, ok := session.Results[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", kindTitles[kind], strings.Repeat("-", len([]rune(kindTitles[kind]))*2))
		if result.Success {
			b.WriteString(result.Analysis)
			b.WriteString("\n")
			fmt.Fprintf(&b, "\n(분석 완료: %s", result.Timestamp.Format("2006-01-02 15:04:05"))
			if result.Model != "" {
				fmt.Fprintf(&b, " | 모델: %s", result.Model)
			}
			b.WriteString(")\n")
		} else {
			fmt.Fprintf(&b, "분석 실패: %s\n", result.Error)
		}
	}

	return b.String()
}
