package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/config"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/metrics"
	"scene-prompt-studio/internal/prompt"
)

func newTestStore(ttl time.Duration) (*Store, *int) {
	created := 0
	store := NewStore(Options{
		TTL:      ttl,
		Defaults: config.DefaultFormDefaults(),
		NewController: func(int64) *generation.Controller {
			created++
			return generation.NewController(generation.ControllerOptions{})
		},
	})
	return store, &created
}

func TestStore_DefaultForm(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	form := store.Snapshot(42)

	assert.Equal(t, "5", form.SceneCount)
	assert.Equal(t, prompt.AspectLandscape, form.AspectRatio)
	assert.Equal(t, "cinematic, realistic, 4K, dramatic light", form.StyleKeywords)
	assert.Empty(t, form.Script)
	assert.Nil(t, form.StyleImage)
}

func TestStore_UpdateIsPerChat(t *testing.T) {
	store, created := newTestStore(time.Hour)

	store.Update(1, func(s *Session) { s.Form.Niche = "Cooking" })
	store.Update(2, func(s *Session) { s.Form.Niche = "Travel" })

	assert.Equal(t, "Cooking", store.Snapshot(1).Niche)
	assert.Equal(t, "Travel", store.Snapshot(2).Niche)
	assert.Equal(t, 2, *created)
	assert.Same(t, store.Controller(1), store.Controller(1))
	assert.Equal(t, 2, store.Len())
}

func TestStore_ResetKeepsController(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	ctrl := store.Controller(7)

	store.Update(7, func(s *Session) {
		s.Form.Script = "Scene 1"
		s.Form.StyleImage = attachment.Blob{FileName: "a.png", Type: "image/png"}
	})
	form := store.Reset(7)

	assert.Empty(t, form.Script)
	assert.Nil(t, form.StyleImage)
	assert.Same(t, ctrl, store.Controller(7))
}

func TestStore_Metrics(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	store.Update(3, func(s *Session) { s.Form.Script = "Scene one. New scene!" })

	assert.Equal(t, metrics.Metrics{Words: 4, Chars: 21, Scenes: 2}, store.Metrics(3))
}

func TestStore_Expiry(t *testing.T) {
	store, created := newTestStore(20 * time.Millisecond)
	store.Update(9, func(s *Session) { s.Form.Niche = "Gaming" })

	require.Eventually(t, func() bool {
		return store.Snapshot(9).Niche == ""
	}, time.Second, 30*time.Millisecond)
	assert.GreaterOrEqual(t, *created, 2)
}

func TestForm_Request(t *testing.T) {
	img := attachment.Blob{FileName: "ref.jpg", Type: "image/jpeg"}
	form := Form{Script: "s", SceneCount: "4", Niche: "n", StyleKeywords: "k", AspectRatio: prompt.AspectSquare, StyleImage: img}

	req := form.Request()

	assert.Equal(t, "4", req.SceneCount)
	assert.Equal(t, prompt.AspectSquare, req.AspectRatio)
	assert.Equal(t, img, req.StyleImage)
}
