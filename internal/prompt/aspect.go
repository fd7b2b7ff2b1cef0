package prompt

import (
	"fmt"
	"strings"
)

type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectStandard  AspectRatio = "4:3"
	AspectTall      AspectRatio = "3:4"
	AspectSquare    AspectRatio = "1:1"
)

const DefaultAspectRatio = AspectLandscape

var aspectOrder = []AspectRatio{AspectLandscape, AspectPortrait, AspectStandard, AspectTall, AspectSquare}

var aspectAliases = map[string]AspectRatio{
	"landscape":  AspectLandscape,
	"widescreen": AspectLandscape,
	"wide":       AspectLandscape,
	"portrait":   AspectPortrait,
	"vertical":   AspectPortrait,
	"shorts":     AspectPortrait,
	"reels":      AspectPortrait,
	"standard":   AspectStandard,
	"tall":       AspectTall,
	"square":     AspectSquare,
}

type NamedOption struct {
	Key  AspectRatio `json:"key"`
	Name string      `json:"name"`
}

// AspectRatios lists the closed set in display order.
func AspectRatios() []NamedOption {
	names := map[AspectRatio]string{
		AspectLandscape: "16:9 Landscape",
		AspectPortrait:  "9:16 Portrait",
		AspectStandard:  "4:3 Standard",
		AspectTall:      "3:4 Tall",
		AspectSquare:    "1:1 Square",
	}

	out := make([]NamedOption, 0, len(aspectOrder))
	for _, a := range aspectOrder {
		out = append(out, NamedOption{Key: a, Name: names[a]})
	}
	return out
}

func (a AspectRatio) Valid() bool {
	for _, v := range aspectOrder {
		if v == a {
			return true
		}
	}
	return false
}

func (a AspectRatio) String() string {
	return string(a)
}

// ParseAspectRatio accepts one of the five ratios, "16x9" style spellings
// and a few words such as "portrait" or "square".
func ParseAspectRatio(value string) (AspectRatio, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, " ", "")
	v = strings.NewReplacer("x", ":", "/", ":").Replace(v)

	if a := AspectRatio(v); a.Valid() {
		return a, nil
	}
	if a, ok := aspectAliases[v]; ok {
		return a, nil
	}
	return "", fmt.Errorf("unsupported aspect ratio %q", value)
}
