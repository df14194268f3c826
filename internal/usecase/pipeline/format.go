package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

const (
	maxUploadSize = 50 * 1024 * 1024

	noSentimentData  = "감정 분석 데이터 없음"
	defaultSituation = "일반적인 교사-아동 상호작용"
)

var supportedAudioFormats = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".wma", ".aac"}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// GenerateConversationID derives a session id from the submission time and
// the transcript content.
func GenerateConversationID(transcript string) string {
	hash := md5.Sum([]byte(transcript))
	return fmt.Sprintf("conv_%s_%s", time.Now().Format("20060102_150405"), hex.EncodeToString(hash[:])[:8])
}

// SanitizeFileName strips unsafe characters and caps the name at 100
// characters, preserving the extension.
func SanitizeFileName(name string) string {
	safe := unsafeFileChars.ReplaceAllString(name, "_")
	if len(safe) > 100 {
		ext := filepath.Ext(safe)
		safe = safe[:100-len(ext)] + ext
	}
	return safe
}

// ValidateAudioFile checks an upload's size and extension.
func ValidateAudioFile(fileName string, size int64) error {
	if fileName == "" {
		return &ValidationError{Reason: "파일이 업로드되지 않았습니다."}
	}
	if size > maxUploadSize {
		return &ValidationError{Reason: fmt.Sprintf("파일 크기가 너무 큽니다. 최대 %dMB까지 지원됩니다.", maxUploadSize/1024/1024)}
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, supported := range supportedAudioFormats {
		if ext == supported {
			return nil
		}
	}
	return &ValidationError{Reason: fmt.Sprintf("지원되지 않는 파일 형식입니다. 지원 형식: %s", strings.Join(supportedAudioFormats, ", "))}
}

// renderTemplate substitutes {name} placeholders with their values.
func renderTemplate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// formatSpeakerInfo renders one speaker's stats for prompt interpolation.
func formatSpeakerInfo(stats *entities.SpeakerStats, role string) string {
	if stats == nil {
		return fmt.Sprintf("%s: 정보 없음", role)
	}
	return fmt.Sprintf(`
%s:
- 총 발화 시간: %.1f초 (%.1f%%)
- 총 단어 수: %d개 (%.1f%%)
- 발화 횟수: %d회
- 평균 신뢰도: %.2f
- 발화당 평균 단어 수: %.1f개
`,
		role,
		stats.TotalTime, stats.SpeakingTimePercent,
		stats.TotalWords, stats.WordPercent,
		stats.UtteranceCount,
		stats.AvgConfidence,
		stats.AvgWordsPerUtterance,
	)
}

// formatChildUtterances renders the child's segments as timestamped lines.
func formatChildUtterances(segments []entities.Utterance) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%.1fs] %s", seg.Start, seg.Text))
	}
	return strings.Join(lines, "\n")
}
