// Package core_test tests the domain model validation rules.
package core_test

import (
	"strings"
	"testing"

	"github.com/book-expert/podcast-service/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() core.GenerationSettings {
	settings := core.GenerationSettings{
		Content:      strings.Repeat("a", core.MinContentLength),
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

func TestGenerationSettings_ApplyDefaults(t *testing.T) {
	t.Parallel()

	settings := validSettings()

	assert.Equal(t, "David", settings.MaleVoice)
	assert.Equal(t, "Sarah", settings.FemaleVoice)
	assert.InEpsilon(t, 1.0, settings.MaleSpeed, 0.001)
	assert.InEpsilon(t, 1.0, settings.FemaleSpeed, 0.001)
	assert.Equal(t, core.LengthStandard, settings.TargetLength)
	assert.Equal(t, core.ToneConversational, settings.Tone)
}

func TestGenerationSettings_Validate(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	require.NoError(t, settings.Validate())
}

func TestGenerationSettings_Validate_ContentTooShort(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings.Content = strings.Repeat("a", core.MinContentLength-1)

	err := settings.Validate()
	require.ErrorIs(t, err, core.ErrContentTooShort)
}

func TestGenerationSettings_Validate_SpeedOutOfRange(t *testing.T) {
	t.Parallel()

	for _, speed := range []float64{0.69, 1.31, -1.0} {
		settings := validSettings()
		settings.MaleSpeed = speed

		err := settings.Validate()
		require.ErrorIs(t, err, core.ErrSpeedOutOfRange)

		settings = validSettings()
		settings.FemaleSpeed = speed

		err = settings.Validate()
		require.ErrorIs(t, err, core.ErrSpeedOutOfRange)
	}
}

func TestGenerationSettings_Validate_BucketEnums(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings.TargetLength = "epic"

	err := settings.Validate()
	require.ErrorIs(t, err, core.ErrInvalidTargetLength)

	settings = validSettings()
	settings.Tone = "sarcastic"

	err = settings.Validate()
	require.ErrorIs(t, err, core.ErrInvalidTone)
}

func TestJobStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, core.StatusQueued.IsTerminal())
	assert.False(t, core.StatusGeneratingScript.IsTerminal())
	assert.False(t, core.StatusGeneratingAudio.IsTerminal())
	assert.True(t, core.StatusCompleted.IsTerminal())
	assert.True(t, core.StatusFailed.IsTerminal())
}
