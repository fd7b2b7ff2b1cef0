package metrics

import (
	"strings"
	"sync"
	"unicode/utf8"
)

const sceneMarker = "scene"

// Metrics are the read-only counters shown next to the script field.
type Metrics struct {
	Words  int `json:"words"`
	Chars  int `json:"chars"`
	Scenes int `json:"scenes"`
}

// Derive computes the counters for text. Chars counts runes of the raw,
// untrimmed text. Scenes is a plain case-insensitive substring count, so
// "scenery" counts too.
func Derive(text string) Metrics {
	return Metrics{
		Words:  len(strings.Fields(text)),
		Chars:  utf8.RuneCountInString(text),
		Scenes: strings.Count(strings.ToLower(text), sceneMarker),
	}
}

// Memo recomputes Metrics only when the text differs from the last call.
type Memo struct {
	mu     sync.Mutex
	last   string
	cached Metrics
	valid  bool
}

func (m *Memo) Derive(text string) Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.last == text {
		return m.cached
	}
	m.last = text
	m.cached = Derive(text)
	m.valid = true
	return m.cached
}
