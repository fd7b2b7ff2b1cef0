package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"scene-prompt-studio/internal/prompt"
)

// FormDefaults is the state of a fresh form.
type FormDefaults struct {
	Script        string             `yaml:"script" json:"script"`
	SceneCount    string             `yaml:"scene_count" json:"scene_count"`
	Niche         string             `yaml:"niche" json:"niche"`
	StyleKeywords string             `yaml:"style_keywords" json:"style_keywords"`
	AspectRatio   prompt.AspectRatio `yaml:"aspect_ratio" json:"aspect_ratio"`
}

func DefaultFormDefaults() FormDefaults {
	return FormDefaults{
		SceneCount:    "5",
		StyleKeywords: "cinematic, realistic, 4K, dramatic light",
		AspectRatio:   prompt.DefaultAspectRatio,
	}
}

// LoadFormDefaults overlays the YAML file at path on the built-in
// defaults. An empty path returns the built-ins.
func LoadFormDefaults(path string) (FormDefaults, error) {
	out := DefaultFormDefaults()
	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FormDefaults{}, fmt.Errorf("read form defaults: %w", err)
	}

	var file FormDefaults
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return FormDefaults{}, fmt.Errorf("parse form defaults %s: %w", path, err)
	}

	if file.Script != "" {
		out.Script = file.Script
	}
	if file.SceneCount != "" {
		out.SceneCount = file.SceneCount
	}
	if file.Niche != "" {
		out.Niche = file.Niche
	}
	if file.StyleKeywords != "" {
		out.StyleKeywords = file.StyleKeywords
	}
	if file.AspectRatio != "" {
		ratio, err := prompt.ParseAspectRatio(string(file.AspectRatio))
		if err != nil {
			return FormDefaults{}, fmt.Errorf("form defaults %s: %w", path, err)
		}
		out.AspectRatio = ratio
	}

	return out, nil
}
