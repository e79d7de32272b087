// Package script_test tests the script generation adapter.
package script_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/book-expert/podcast-service/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "script-test.log")
	require.NoError(t, err)

	return log
}

func testSettings() core.GenerationSettings {
	settings := core.GenerationSettings{
		Content:      "",
		MaleVoice:    "",
		FemaleVoice:  "",
		MaleSpeed:    0,
		FemaleSpeed:  0,
		TargetLength: "",
		Tone:         "",
		IncludeIntro: true,
		AddMusic:     false,
	}
	settings.ApplyDefaults()

	return settings
}

// completionServer returns an httptest server that answers every
// chat-completion request with the given message content.
func completionServer(t *testing.T, messageContent string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": messageContent}},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(response)
		assert.NoError(t, err)
	}))
}

func validScriptJSON(t *testing.T) string {
	t.Helper()

	generated := core.Script{
		Segments: []core.ScriptSegment{
			{Speaker: core.SpeakerMale, Name: "David", Content: "Welcome to our podcast."},
			{Speaker: core.SpeakerFemale, Name: "Sarah", Content: "Today we're discussing Go."},
		},
		EstimatedDuration: 360,
	}

	data, err := json.Marshal(generated)
	require.NoError(t, err)

	return string(data)
}

func TestGenerateScript_Success(t *testing.T) {
	t.Parallel()

	server := completionServer(t, validScriptJSON(t))
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	content := strings.Repeat("Go is a programming language. ", 10)

	generated, err := generator.GenerateScript(context.Background(), content, testSettings())
	require.NoError(t, err)

	require.Len(t, generated.Segments, 2)
	assert.Equal(t, core.SpeakerMale, generated.Segments[0].Speaker)
	assert.Equal(t, "David", generated.Segments[0].Name)
	assert.Equal(t, 360, generated.EstimatedDuration)
}

func TestGenerateScript_ContentTooShort(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	_, err := generator.GenerateScript(context.Background(), "too short", testSettings())
	require.ErrorIs(t, err, core.ErrContentTooShort)
	assert.False(t, called, "provider must not be called for undersized content")
}

func TestGenerateScript_MissingSegments(t *testing.T) {
	t.Parallel()

	server := completionServer(t, `{"estimatedDuration": 120}`)
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	content := strings.Repeat("Go is a programming language. ", 10)

	_, err := generator.GenerateScript(context.Background(), content, testSettings())
	require.ErrorIs(t, err, core.ErrScriptFormat)
}

func TestGenerateScript_UnknownSpeaker(t *testing.T) {
	t.Parallel()

	malformed := `{"segments":[{"speaker":"narrator","name":"X","content":"hello"}],"estimatedDuration":60}`
	server := completionServer(t, malformed)
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	content := strings.Repeat("Go is a programming language. ", 10)

	_, err := generator.GenerateScript(context.Background(), content, testSettings())
	require.ErrorIs(t, err, core.ErrScriptFormat)
}

func TestGenerateScript_EmptySegmentContent(t *testing.T) {
	t.Parallel()

	malformed := `{"segments":[{"speaker":"male","name":"David","content":""}],"estimatedDuration":60}`
	server := completionServer(t, malformed)
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	content := strings.Repeat("Go is a programming language. ", 10)

	_, err := generator.GenerateScript(context.Background(), content, testSettings())
	require.ErrorIs(t, err, core.ErrScriptFormat)
}

func TestGenerateScript_ProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	content := strings.Repeat("Go is a programming language. ", 10)

	_, err := generator.GenerateScript(context.Background(), content, testSettings())
	require.ErrorIs(t, err, core.ErrScriptGeneration)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAnalyzeContent_Success(t *testing.T) {
	t.Parallel()

	analysis := `{"title":"Go Concurrency","summary":"A look at goroutines.","keyPoints":["goroutines","channels"]}`
	server := completionServer(t, analysis)
	defer server.Close()

	generator := script.NewGenerator(server.URL, "gpt-5", "test-key", 5*time.Second, testLogger(t))

	result, err := generator.AnalyzeContent(context.Background(), "some long content about Go")
	require.NoError(t, err)

	assert.Equal(t, "Go Concurrency", result.Title)
	assert.Len(t, result.KeyPoints, 2)
}
