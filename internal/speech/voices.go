package speech

import (
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/podcast-service/internal/core"
	"github.com/pelletier/go-toml/v2"
)

// Default voice display names, used when a chosen name is not in the catalog.
const (
	DefaultMaleVoice   = "David"
	DefaultFemaleVoice = "Sarah"
)

// Speaking-rate constants for the duration estimate.
const (
	wordsPerMinute  = 150.0
	secondsInMinute = 60.0
)

// VoiceCatalog maps voice display names to provider voice ids, one table per
// conversational party.
type VoiceCatalog struct {
	Male   map[string]string `toml:"male"`
	Female map[string]string `toml:"female"`
}

// DefaultVoiceCatalog returns the built-in voice table.
func DefaultVoiceCatalog() VoiceCatalog {
	return VoiceCatalog{
		Male: map[string]string{
			"David":   "21m00Tcm4TlvDq8ikWAM",
			"James":   "2EiwWnXFnvU5JabPnv8n",
			"Michael": "flq6f7yk4E4fJM5XTYuZ",
			"Ryan":    "wViXBPUzp2ZZixB1xQuM",
		},
		Female: map[string]string{
			"Sarah":  "EXAVITQu4vr4xnSDxMaL",
			"Emma":   "ThT5KcBeYPX3keUQqHPh",
			"Lisa":   "XB0fDUnXU5powFXDhCwa",
			"Rachel": "pNInz6obpgDQGcFmaJgB",
		},
	}
}

// LoadVoiceCatalog reads a TOML voice table and merges it over the built-in
// defaults, so an override file only needs to list the voices it changes.
func LoadVoiceCatalog(path string) (VoiceCatalog, error) {
	catalog := DefaultVoiceCatalog()

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return VoiceCatalog{}, fmt.Errorf("failed to read voice catalog %q: %w", path, readErr)
	}

	var override VoiceCatalog

	unmarshalErr := toml.Unmarshal(data, &override)
	if unmarshalErr != nil {
		return VoiceCatalog{}, fmt.Errorf("failed to parse voice catalog %q: %w", path, unmarshalErr)
	}

	for name, id := range override.Male {
		catalog.Male[name] = id
	}

	for name, id := range override.Female {
		catalog.Female[name] = id
	}

	return catalog, nil
}

// Resolve maps a voice display name to the provider voice id for the given
// party. An unknown name falls back to that party's default voice; resolution
// never fails.
func (c VoiceCatalog) Resolve(speaker core.Speaker, name string) string {
	if speaker == core.SpeakerFemale {
		if id, ok := c.Female[name]; ok {
			return id
		}

		return c.Female[DefaultFemaleVoice]
	}

	if id, ok := c.Male[name]; ok {
		return id
	}

	return c.Male[DefaultMaleVoice]
}

// EstimateSegmentDuration estimates spoken duration in seconds from word
// count at ~150 words per minute, scaled by the speed multiplier. It is the
// documented fallback when the provider reports no exact timing.
func EstimateSegmentDuration(text string, speed float64) float64 {
	if speed <= 0 {
		speed = 1.0
	}

	words := len(strings.Fields(text))

	return float64(words) / wordsPerMinute * secondsInMinute / speed
}
