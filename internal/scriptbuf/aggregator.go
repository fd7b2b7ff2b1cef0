package scriptbuf

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Fragment is one chat message typed while the chat waits for a script.
// MessageID orders fragments; updates may be handled concurrently.
type Fragment struct {
	ChatID    int64
	MessageID int
	Text      string
}

// Script is the text of all fragments that arrived within one debounce window.
type Script struct {
	ChatID    int64
	Text      string
	Fragments int
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Script)
}

// Aggregator joins consecutive messages per chat. Telegram splits long
// pastes into several messages that arrive back to back.
type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Script)
	pending  map[int64]*pendingScript
}

type pendingScript struct {
	parts []Fragment
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[int64]*pendingScript),
	}
}

func (a *Aggregator) Add(f Fragment) {
	if f.Text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ps, ok := a.pending[f.ChatID]
	if !ok {
		ps = &pendingScript{}
		a.pending[f.ChatID] = ps
	}
	ps.parts = append(ps.parts, f)

	if ps.timer != nil {
		ps.timer.Stop()
	}
	chatID := f.ChatID
	ps.timer = time.AfterFunc(a.debounce, func() {
		a.flush(chatID)
	})
}

// Flush emits the chat's pending fragments now, if any.
func (a *Aggregator) Flush(chatID int64) {
	a.mu.Lock()
	if ps, ok := a.pending[chatID]; ok && ps.timer != nil {
		ps.timer.Stop()
	}
	a.mu.Unlock()

	a.flush(chatID)
}

// Discard drops pending fragments without emitting them.
func (a *Aggregator) Discard(chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ps, ok := a.pending[chatID]; ok {
		if ps.timer != nil {
			ps.timer.Stop()
		}
		delete(a.pending, chatID)
	}
}

func (a *Aggregator) Pending(chatID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.pending[chatID]
	return ok
}

func (a *Aggregator) flush(chatID int64) {
	a.mu.Lock()
	ps, ok := a.pending[chatID]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, chatID)

	sort.SliceStable(ps.parts, func(i, j int) bool {
		return ps.parts[i].MessageID < ps.parts[j].MessageID
	})
	texts := make([]string, 0, len(ps.parts))
	for _, f := range ps.parts {
		texts = append(texts, f.Text)
	}
	script := Script{
		ChatID:    chatID,
		Text:      strings.Join(texts, "\n"),
		Fragments: len(texts),
	}
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(script)
	}
}
