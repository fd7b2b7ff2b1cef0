package telegram

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitByBytes(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitByBytes("short", 10))

	parts := splitByBytes(strings.Repeat("a", 25), 10)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), "aaaaa"}, parts)

	// Two-byte runes are never cut in half.
	parts = splitByBytes(strings.Repeat("é", 5), 3)
	for _, p := range parts {
		assert.Equal(t, "é", p)
	}
}

func TestResolveMimeType(t *testing.T) {
	assert.Equal(t, "image/png", resolveMimeType("image/png; charset=binary", nil))
	assert.Equal(t, "text/plain", resolveMimeType("", []byte("hello there")))
	assert.Equal(t, "image/png", resolveMimeType("application/octet-stream", []byte("\x89PNG\r\n\x1a\n0000")))
}

func TestInlineKeyboard(t *testing.T) {
	markup := inlineKeyboard([][]Button{
		{{Text: "16:9", Data: "aspect:16:9"}, {Text: "9:16", Data: "aspect:9:16"}},
		{{Text: "1:1", Data: "aspect:1:1"}},
	})

	if assert.Len(t, markup.InlineKeyboard, 2) {
		assert.Len(t, markup.InlineKeyboard[0], 2)
		assert.Equal(t, "16:9", markup.InlineKeyboard[0][0].Text)
		if assert.NotNil(t, markup.InlineKeyboard[1][0].CallbackData) {
			assert.Equal(t, "aspect:1:1", *markup.InlineKeyboard[1][0].CallbackData)
		}
	}
}

func TestRemoteFile_SniffedTypeIsSharedSafely(t *testing.T) {
	f := &RemoteFile{fileID: "doc", name: "notes"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.setSniffedType("", []byte("plain words"))
		}()
		go func() {
			defer wg.Done()
			_ = f.MimeType()
		}()
	}
	wg.Wait()

	assert.Equal(t, "text/plain", f.MimeType())

	f.setSniffedType("image/png", nil)
	assert.Equal(t, "text/plain", f.MimeType())
}
