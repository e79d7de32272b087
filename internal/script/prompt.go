package script

import (
	"fmt"

	"github.com/book-expert/podcast-service/internal/core"
)

// lengthInstructions maps each target-length bucket to an approximate
// word/time budget handed to the provider.
var lengthInstructions = map[string]string{
	core.LengthBrief:    "3-5 minutes (about 450-750 words)",
	core.LengthStandard: "5-8 minutes (about 750-1200 words)",
	core.LengthDetailed: "8-12 minutes (about 1200-1800 words)",
	core.LengthInDepth:  "12-15 minutes (about 1800-2250 words)",
}

// toneInstructions maps each tone bucket to a style directive.
var toneInstructions = map[string]string{
	core.ToneProfessional:   "professional and informative tone with authoritative delivery",
	core.ToneConversational: "conversational and engaging tone with natural flow",
	core.ToneCasual:         "casual and friendly tone with relaxed interaction",
	core.ToneAcademic:       "academic and analytical tone with detailed explanations",
}

const scriptSystemPrompt = "You are an expert podcast script writer who creates engaging, " +
	"natural conversations between two hosts. Always respond with valid JSON in the specified format."

const analysisSystemPrompt = "You are an expert content analyst. " +
	"Always respond with valid JSON in the specified format."

// buildScriptPrompt constructs the generation request for a two-host dialogue.
// The provider is asked for a structured JSON result rather than free text so
// the response shape can be validated.
func buildScriptPrompt(content string, settings core.GenerationSettings) string {
	prompt := fmt.Sprintf(`You are an expert podcast script writer. Create an engaging dialogue between two podcast hosts discussing the following article content.

ARTICLE CONTENT:
%s

REQUIREMENTS:
- Target length: %s
- Discussion tone: %s
- Male host voice: %s
- Female host voice: %s
- Include intro and outro: %t

SCRIPT FORMAT:
- Create natural, engaging dialogue between the two hosts
- The male host should be knowledgeable and provide context
- The female host should ask insightful questions and provide analysis
- Include natural transitions, pauses, and conversational elements
- Make sure the discussion covers the key points from the article
- Keep the conversation flowing naturally without being repetitive
`,
		content,
		lengthInstructions[settings.TargetLength],
		toneInstructions[settings.Tone],
		settings.MaleVoice,
		settings.FemaleVoice,
		settings.IncludeIntro,
	)

	if settings.IncludeIntro {
		prompt += "\nStart with a brief intro where hosts introduce themselves and the topic."
		prompt += "\nEnd with a brief outro and closing remarks.\n"
	}

	prompt += fmt.Sprintf(`
Return the response as JSON in this exact format:
{
  "segments": [
    {
      "speaker": "male",
      "name": %q,
      "content": "Welcome to our podcast..."
    },
    {
      "speaker": "female",
      "name": %q,
      "content": "Thank you, and today we're discussing..."
    }
  ],
  "estimatedDuration": 360
}`, settings.MaleVoice, settings.FemaleVoice)

	return prompt
}

// buildAnalysisPrompt constructs the title/summary/key-points request.
func buildAnalysisPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following content and provide a title, summary, and key points for a podcast discussion.

CONTENT:
%s

Return the response as JSON in this exact format:
{
  "title": "Brief, engaging title for the podcast episode",
  "summary": "2-3 sentence summary of the main topic",
  "keyPoints": ["Key point 1", "Key point 2", "Key point 3"]
}`, content)
}
