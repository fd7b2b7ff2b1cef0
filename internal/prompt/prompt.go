package prompt

import "strings"

const (
	DefaultScript = "A short story about a futuristic city at night."
	DefaultNiche  = "Not specified."

	referenceImageLine = "- A reference image is provided for style inspiration.\n"
)

// Params is built fresh for every generation and dropped afterwards.
// SceneCount is passed through as typed by the user.
type Params struct {
	Script        string
	SceneCount    string
	Niche         string
	StyleKeywords string
	AspectRatio   AspectRatio
	StyleImage    StyleImage
}

// Compose returns the request parts for p: the instruction text, followed
// by the style image when one is attached.
func Compose(p Params) []Part {
	img, hasImage := p.StyleImage.Get()

	text := BuildInstruction(p)
	if !hasImage {
		return []Part{TextPart{Text: text}}
	}

	return []Part{
		TextPart{Text: text},
		BinaryPart{MimeType: img.MimeType, Data: img.Data},
	}
}

// BuildInstruction renders the instruction text alone.
func BuildInstruction(p Params) string {
	script := p.Script
	if script == "" {
		script = DefaultScript
	}
	niche := p.Niche
	if niche == "" {
		niche = DefaultNiche
	}

	var b strings.Builder
	b.WriteString("You are a creative assistant for generating video prompts. ")
	b.WriteString("Based on the following script and style guidelines, generate a series of descriptive prompts for an AI image/video generator.\n\n")

	b.WriteString("**Task:**\n")
	b.WriteString("Generate " + p.SceneCount + " distinct prompts. ")
	b.WriteString("Each prompt should be detailed, descriptive, and suitable for an AI video generator. ")
	b.WriteString("The prompts should follow the provided script's narrative and incorporate all the specified style elements. ")
	b.WriteString("Output should be a numbered list of prompts.\n\n")

	b.WriteString("**Script/Content:**\n")
	b.WriteString(script + "\n\n")

	b.WriteString("**Topic/Niche:**\n")
	b.WriteString(niche + "\n\n")

	b.WriteString("**Visual Style:**\n")
	b.WriteString("- Aspect Ratio: " + p.AspectRatio.String() + "\n")
	b.WriteString("- Keywords: " + p.StyleKeywords + "\n")

	if _, ok := p.StyleImage.Get(); ok {
		b.WriteString(referenceImageLine)
	}

	return b.String()
}
