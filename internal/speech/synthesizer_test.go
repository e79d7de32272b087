// Package speech_test tests the speech synthesis adapter.
package speech_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/book-expert/podcast-service/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "speech-test.log")
	require.NoError(t, err)

	return log
}

func synthesisSettings() core.GenerationSettings {
	settings := core.GenerationSettings{
		Content:      "",
		MaleVoice:    "David",
		FemaleVoice:  "Sarah",
		MaleSpeed:    1.0,
		FemaleSpeed:  1.0,
		TargetLength: core.LengthStandard,
		Tone:         core.ToneConversational,
		IncludeIntro: false,
		AddMusic:     false,
	}

	return settings
}

func threeSegmentScript() core.Script {
	return core.Script{
		Segments: []core.ScriptSegment{
			{Speaker: core.SpeakerMale, Name: "David", Content: "Welcome to the show everyone."},
			{Speaker: core.SpeakerFemale, Name: "Sarah", Content: "Great to be here today."},
			{Speaker: core.SpeakerMale, Name: "David", Content: "Let us dive right in."},
		},
		EstimatedDuration: 300,
	}
}

func TestSynthesizePodcast_Success(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.True(t, strings.HasPrefix(r.URL.Path, "/v1/text-to-speech/"))
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("AUDIO"))
	}))
	defer server.Close()

	synthesizer := speech.NewSynthesizer(
		server.URL, "test-key", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	result, err := synthesizer.SynthesizePodcast(
		context.Background(), threeSegmentScript(), synthesisSettings(),
	)
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []byte("AUDIOAUDIOAUDIO"), result.Audio)

	// Each segment has five words: 5/150*60 = 2 seconds at normal speed.
	assert.InEpsilon(t, 6.0, result.DurationSeconds, 0.001)
}

func TestSynthesizePodcast_SegmentFailureDegrades(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		call := calls.Add(1)
		if call == 2 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte("AUDIO"))
	}))
	defer server.Close()

	synthesizer := speech.NewSynthesizer(
		server.URL, "test-key", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	result, err := synthesizer.SynthesizePodcast(
		context.Background(), threeSegmentScript(), synthesisSettings(),
	)
	require.NoError(t, err, "a single segment failure must not fail the stage")

	assert.Equal(t, int32(3), calls.Load(), "remaining segments are still synthesized")

	// Two real segments plus the fixed 1024-byte silent placeholder.
	assert.Len(t, result.Audio, len("AUDIO")*2+1024)

	// Two 2-second estimates plus the fixed 1-second placeholder.
	assert.InEpsilon(t, 5.0, result.DurationSeconds, 0.001)
}

func TestSynthesizePodcast_AuthErrorIsStageFatal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	synthesizer := speech.NewSynthesizer(
		server.URL, "bad-key", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	_, err := synthesizer.SynthesizePodcast(
		context.Background(), threeSegmentScript(), synthesisSettings(),
	)
	require.ErrorIs(t, err, core.ErrSpeechProvider)
	assert.Equal(t, int32(1), calls.Load(), "the stage aborts on the first fatal response")
}

func TestSynthesizePodcast_QuotaErrorIsStageFatal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	synthesizer := speech.NewSynthesizer(
		server.URL, "test-key", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	_, err := synthesizer.SynthesizePodcast(
		context.Background(), threeSegmentScript(), synthesisSettings(),
	)
	require.ErrorIs(t, err, core.ErrSpeechProvider)
}

func TestSynthesizePodcast_MissingAPIKey(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	synthesizer := speech.NewSynthesizer(
		server.URL, "", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	_, err := synthesizer.SynthesizePodcast(
		context.Background(), threeSegmentScript(), synthesisSettings(),
	)
	require.ErrorIs(t, err, core.ErrSpeechProvider)
	assert.False(t, called, "no provider call is made without credentials")
}

func TestSynthesizePodcast_SpeedFollowsSpeaker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("AUDIO"))
	}))
	defer server.Close()

	settings := synthesisSettings()
	settings.MaleSpeed = 1.0
	settings.FemaleSpeed = 1.25

	synthesizer := speech.NewSynthesizer(
		server.URL, "test-key", speech.DefaultVoiceCatalog(), 5*time.Second, testLogger(t),
	)

	script := core.Script{
		Segments: []core.ScriptSegment{
			{Speaker: core.SpeakerFemale, Name: "Sarah", Content: "Welcome to the show everyone."},
		},
		EstimatedDuration: 60,
	}

	result, err := synthesizer.SynthesizePodcast(context.Background(), script, settings)
	require.NoError(t, err)

	// Five words at 1.25x: 5/150*60/1.25 = 1.6 seconds.
	assert.InEpsilon(t, 1.6, result.DurationSeconds, 0.001)
}
