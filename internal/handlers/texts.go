package handlers

import (
	"fmt"
	"strings"

	"scene-prompt-studio/internal/metrics"
	"scene-prompt-studio/internal/session"
)

const (
	loadingText           = "Generating prompts..."
	errorHeader           = "An Error Occurred"
	emptyResultText       = "The model returned an empty response."
	alreadyGeneratingText = "Already generating. Please wait for the current result."
	rateLimitedText       = "Too many generations. Please wait a minute and try again."
)

const startText = "Video Prompt Generator\n\n" +
	"Turn a script into a list of image and video prompts, one per scene.\n\n" +
	"1. /script and send your script (or a .txt file)\n" +
	"2. /scenes, /niche, /style, /aspect to tune the request\n" +
	"3. Optionally send a photo as style reference\n" +
	"4. /generate\n\n" +
	"/help lists every command."

const helpText = "Commands:\n" +
	"/script [text] - set the script; without text the next messages are used\n" +
	"/scenes <n> - number of scenes\n" +
	"/niche <topic> - topic or niche\n" +
	"/style <keywords> - visual style keywords\n" +
	"/aspect [ratio] - aspect ratio (16:9, 9:16, 4:3, 3:4, 1:1)\n" +
	"/clearimage - remove the style image\n" +
	"/stats - words, characters and scenes in the script\n" +
	"/show - current settings\n" +
	"/generate - generate prompts\n" +
	"/reset - restore defaults\n\n" +
	"Send a photo to use it as style reference. Send a .txt file to load a script."

func statsText(m metrics.Metrics) string {
	return fmt.Sprintf("Words: %d\nCharacters: %d\nScenes: %d", m.Words, m.Chars, m.Scenes)
}

func scriptSavedText(m metrics.Metrics) string {
	return "Script saved.\n" + statsText(m)
}

func formText(f session.Form, m metrics.Metrics) string {
	var b strings.Builder
	b.WriteString("Current settings\n\n")
	fmt.Fprintf(&b, "Script: %s\n", preview(f.Script, 200))
	fmt.Fprintf(&b, "Number of scenes: %s\n", orDash(f.SceneCount))
	fmt.Fprintf(&b, "Topic / niche: %s\n", orDash(f.Niche))
	fmt.Fprintf(&b, "Style keywords: %s\n", orDash(f.StyleKeywords))
	fmt.Fprintf(&b, "Aspect ratio: %s\n", orDash(f.AspectRatio.String()))
	if f.StyleImage != nil {
		b.WriteString("Style image: attached\n")
	} else {
		b.WriteString("Style image: none\n")
	}
	b.WriteString("\n")
	b.WriteString(statsText(m))
	return b.String()
}

func preview(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "-"
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
