package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-prompt-studio/internal/attachment"
)

func sampleParams() Params {
	return Params{
		Script:        "A robot walks through rain.",
		SceneCount:    "3",
		Niche:         "Sci-fi",
		StyleKeywords: "neon, moody",
		AspectRatio:   AspectLandscape,
	}
}

func TestCompose_TextOnly(t *testing.T) {
	parts := Compose(sampleParams())

	require.Len(t, parts, 1)
	text, ok := parts[0].(TextPart)
	require.True(t, ok)

	for _, want := range []string{"Generate 3 distinct prompts", "A robot walks through rain.", "Sci-fi", "- Aspect Ratio: 16:9", "- Keywords: neon, moody"} {
		assert.Contains(t, text.Text, want)
	}
	assert.NotContains(t, text.Text, "reference image")
}

func TestCompose_WithStyleImage(t *testing.T) {
	p := sampleParams()
	p.StyleImage = WithStyleImage(attachment.EncodedImage{Data: "aGVsbG8=", MimeType: "image/webp"})

	parts := Compose(p)

	require.Len(t, parts, 2)
	text, ok := parts[0].(TextPart)
	require.True(t, ok)
	assert.Contains(t, text.Text, "- A reference image is provided for style inspiration.")

	bin, ok := parts[1].(BinaryPart)
	require.True(t, ok)
	assert.Equal(t, "image/webp", bin.MimeType)
	assert.Equal(t, "aGVsbG8=", bin.Data)
}

func TestCompose_Fallbacks(t *testing.T) {
	p := sampleParams()
	p.Script = ""
	p.Niche = ""

	text := Compose(p)[0].(TextPart).Text

	assert.Contains(t, text, "A short story about a futuristic city at night.")
	assert.Contains(t, text, "**Topic/Niche:**\nNot specified.\n")
}

func TestCompose_Idempotent(t *testing.T) {
	p := sampleParams()
	p.StyleImage = WithStyleImage(attachment.EncodedImage{Data: "AAEC", MimeType: "image/png"})

	assert.Equal(t, Compose(p), Compose(p))
}

func TestBuildInstruction_SectionOrder(t *testing.T) {
	text := BuildInstruction(sampleParams())

	order := []string{"**Task:**", "**Script/Content:**", "**Topic/Niche:**", "**Visual Style:**", "- Aspect Ratio:", "- Keywords:"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(text, marker)
		require.GreaterOrEqual(t, idx, 0, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestStyleImage_ZeroValueIsAbsent(t *testing.T) {
	var s StyleImage
	_, ok := s.Get()
	assert.False(t, ok)

	_, ok = NoStyleImage().Get()
	assert.False(t, ok)
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in   string
		want AspectRatio
	}{
		{"16:9", AspectLandscape},
		{" 9:16 ", AspectPortrait},
		{"4x3", AspectStandard},
		{"3/4", AspectTall},
		{"Square", AspectSquare},
		{"portrait", AspectPortrait},
	}
	for _, tt := range tests {
		got, err := ParseAspectRatio(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseAspectRatio("21:9")
	assert.Error(t, err)
}

func TestAspectRatios_Order(t *testing.T) {
	var keys []AspectRatio
	for _, o := range AspectRatios() {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []AspectRatio{"16:9", "9:16", "4:3", "3:4", "1:1"}, keys)
}
