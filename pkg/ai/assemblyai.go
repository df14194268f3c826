package ai

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"

	"github.com/kindcoach/kindcoach-api/pkg/config"
)

// AssemblyAIClient transcribes audio with speaker diarization. Jobs are
// submitted and then polled to completion, so callers block for the whole
// transcription.
type AssemblyAIClient struct {
	client       *aai.Client
	languageCode string
	pollTimeout  time.Duration
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables. Extra options are
// forwarded to the SDK (tests use this to point at a local server).
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, opts ...aai.ClientOption) *AssemblyAIClient {
	var apiKey string
	language := "ko"
	pollTimeout := 10 * time.Minute
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.LanguageCode != "" {
			language = cfg.LanguageCode
		}
		if cfg.PollTimeout > 0 {
			pollTimeout = cfg.PollTimeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	return &AssemblyAIClient{
		client:       aai.NewClientWithOptions(append([]aai.ClientOption{aai.WithAPIKey(apiKey)}, opts...)...),
		languageCode: language,
		pollTimeout:  pollTimeout,
	}
}

// TranscriptUtterance is one diarized segment with times in seconds.
type TranscriptUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`
}

// TranscriptionResult is the normalized transcription output.
type TranscriptionResult struct {
	Text       string                `json:"text"`
	Confidence float64               `json:"confidence"`
	Duration   float64               `json:"audio_duration"`
	Utterances []TranscriptUtterance `json:"utterances"`
}

// Transcribe uploads the audio bytes, submits a diarized transcription job
// and polls until it completes. A job that ends in the error status is
// returned as an error; there is no resubmission.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio io.Reader) (*TranscriptionResult, error) {
	uploadURL, err := c.client.Upload(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	transcript, err := c.client.Transcripts.SubmitFromURL(ctx, uploadURL, &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
		LanguageCode:  aai.TranscriptLanguageCode(c.languageCode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit transcription: %w", err)
	}
	transcriptID := aai.ToString(transcript.ID)

	// Poll with a widening interval until the job settles or the budget
	// runs out. Terminal statuses stop the schedule immediately.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = c.pollTimeout

	poll := func() error {
		transcript, err = c.client.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to get transcript %s: %w", transcriptID, err))
		}
		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return nil
		case aai.TranscriptStatusError:
			return backoff.Permanent(fmt.Errorf("전사 실패: %s", aai.ToString(transcript.Error)))
		default:
			return fmt.Errorf("transcript %s is %s", transcriptID, transcript.Status)
		}
	}
	if err := backoff.Retry(poll, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	return normalizeTranscript(transcript), nil
}

// normalizeTranscript flattens the SDK's pointer-heavy transcript into plain
// values, converting millisecond offsets to seconds.
func normalizeTranscript(t aai.Transcript) *TranscriptionResult {
	result := &TranscriptionResult{
		Text:       aai.ToString(t.Text),
		Confidence: aai.ToFloat64(t.Confidence),
		Duration:   aai.ToFloat64(t.AudioDuration),
		Utterances: make([]TranscriptUtterance, 0, len(t.Utterances)),
	}
	for _, u := range t.Utterances {
		text := aai.ToString(u.Text)
		result.Utterances = append(result.Utterances, TranscriptUtterance{
			Speaker:    aai.ToString(u.Speaker),
			Text:       text,
			Start:      float64(aai.ToInt64(u.Start)) / 1000.0,
			End:        float64(aai.ToInt64(u.End)) / 1000.0,
			Confidence: aai.ToFloat64(u.Confidence),
			WordCount:  len(strings.Fields(text)),
		})
	}
	return result
}
