// Package speech wraps the speech-synthesis provider that renders dialogue
// segments into audio and concatenates them into one podcast artifact.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
)

// API endpoint of the speech provider; the voice id is appended.
const apiTextToSpeech = "/v1/text-to-speech/"

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerAPIKey      = "xi-api-key"
	contentTypeJSON   = "application/json"
	contentTypeMPEG   = "audio/mpeg"
)

// Silent placeholder substituted for a failed segment: a fixed-size zero
// buffer counted as one second of audio.
const (
	silentPlaceholderBytes   = 1024
	silentPlaceholderSeconds = 1.0
)

const synthesisModelID = "eleven_monolingual_v1"

// Synthesizer is an HTTP client for an ElevenLabs-style speech endpoint. A
// per-segment failure degrades to a silent placeholder; an auth or quota
// failure aborts the whole stage.
type Synthesizer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	catalog    VoiceCatalog
	log        *logger.Logger
}

// NewSynthesizer creates a speech synthesizer for the provider at baseURL.
// The timeout applies to each per-segment request.
func NewSynthesizer(
	baseURL, apiKey string,
	catalog VoiceCatalog,
	timeout time.Duration,
	log *logger.Logger,
) *Synthesizer {
	return &Synthesizer{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		catalog:    catalog,
		log:        log,
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// SynthesizePodcast renders every script segment in order and concatenates
// the audio buffers into one artifact. Segment failures degrade to silent
// placeholders so the job can still complete; only a whole-stage provider
// outage (missing credentials, auth, quota) fails the stage.
func (s *Synthesizer) SynthesizePodcast(
	ctx context.Context,
	script core.Script,
	settings core.GenerationSettings,
) (core.SynthesisResult, error) {
	if s.apiKey == "" {
		return core.SynthesisResult{}, fmt.Errorf("%w: missing API key", core.ErrSpeechProvider)
	}

	buffers := make([][]byte, 0, len(script.Segments))

	var totalDuration float64

	for i, segment := range script.Segments {
		audio, duration, segErr := s.synthesizeSegment(ctx, segment, settings)
		if segErr != nil {
			if errors.Is(segErr, core.ErrSpeechProvider) {
				return core.SynthesisResult{}, segErr
			}

			s.log.Warn("Segment %d/%d synthesis failed, substituting %.0fs of silence: %v",
				i+1, len(script.Segments), silentPlaceholderSeconds, segErr)

			audio = make([]byte, silentPlaceholderBytes)
			duration = silentPlaceholderSeconds
		}

		buffers = append(buffers, audio)
		totalDuration += duration
	}

	return core.SynthesisResult{
		Audio:           bytes.Join(buffers, nil),
		DurationSeconds: totalDuration,
	}, nil
}

// synthesizeSegment requests audio for one segment at the owning party's
// voice and speed. The returned duration is the word-count estimate; the
// provider does not report exact timing.
func (s *Synthesizer) synthesizeSegment(
	ctx context.Context,
	segment core.ScriptSegment,
	settings core.GenerationSettings,
) ([]byte, float64, error) {
	voiceName := settings.MaleVoice
	speed := settings.MaleSpeed

	if segment.Speaker == core.SpeakerFemale {
		voiceName = settings.FemaleVoice
		speed = settings.FemaleSpeed
	}

	voiceID := s.catalog.Resolve(segment.Speaker, voiceName)

	request := synthesisRequest{
		Text:    segment.Content,
		ModelID: synthesisModelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			Style:           0.0,
			UseSpeakerBoost: true,
			Speed:           speed,
		},
	}

	requestBody, marshalErr := json.Marshal(request)
	if marshalErr != nil {
		return nil, 0, fmt.Errorf("failed to marshal synthesis request: %w", marshalErr)
	}

	url := s.baseURL + apiTextToSpeech + voiceID

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if reqErr != nil {
		return nil, 0, fmt.Errorf("failed to create synthesis request: %w", reqErr)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeMPEG)
	httpReq.Header.Set(headerAPIKey, s.apiKey)

	resp, doErr := s.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, 0, fmt.Errorf("failed to reach speech provider at %s: %w", s.baseURL, doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, classifyStatus(resp)
	}

	audioData, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, 0, fmt.Errorf("failed to read audio data: %w", readErr)
	}

	if len(audioData) == 0 {
		return nil, 0, errors.New("received empty audio data")
	}

	return audioData, EstimateSegmentDuration(segment.Content, speed), nil
}

// classifyStatus separates whole-stage-fatal provider responses (auth and
// quota) from segment-degradable ones (transient or content errors).
func classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: provider returned %s: %s",
			core.ErrSpeechProvider, resp.Status, string(body))
	default:
		return fmt.Errorf("speech provider returned %s: %s", resp.Status, string(body))
	}
}
