package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/config"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/metrics"
	"scene-prompt-studio/internal/prompt"
)

// Form mirrors the fields of the web form for one chat.
type Form struct {
	Script        string
	SceneCount    string
	Niche         string
	StyleKeywords string
	AspectRatio   prompt.AspectRatio
	StyleImage    attachment.File

	AwaitingScript bool
}

func (f Form) Request() generation.Request {
	return generation.Request{
		Script:        f.Script,
		SceneCount:    f.SceneCount,
		Niche:         f.Niche,
		StyleKeywords: f.StyleKeywords,
		AspectRatio:   f.AspectRatio,
		StyleImage:    f.StyleImage,
	}
}

type Session struct {
	ChatID       int64
	Form         Form
	Controller   *generation.Controller
	LastActivity time.Time

	metrics metrics.Memo
}

// Metrics derives the script counters, reusing the last result when the
// script is unchanged.
func (s *Session) Metrics() metrics.Metrics {
	return s.metrics.Derive(s.Form.Script)
}

type Options struct {
	TTL           time.Duration
	Defaults      config.FormDefaults
	NewController func(chatID int64) *generation.Controller
}

// Store keeps one Session per chat and drops it after TTL of inactivity.
type Store struct {
	mu            sync.Mutex
	sessions      *cache.Cache
	ttl           time.Duration
	defaults      config.FormDefaults
	newController func(chatID int64) *generation.Controller
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	newController := opts.NewController
	if newController == nil {
		newController = func(int64) *generation.Controller {
			return generation.NewController(generation.ControllerOptions{})
		}
	}

	return &Store{
		sessions:      cache.New(ttl, ttl/2),
		ttl:           ttl,
		defaults:      opts.Defaults,
		newController: newController,
	}
}

// Snapshot returns a copy of the chat's form.
func (s *Store) Snapshot(chatID int64) Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(chatID).Form
}

// Update applies fn to the chat's session and returns the resulting form.
func (s *Store) Update(chatID int64, fn func(*Session)) Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(chatID)
	if fn != nil {
		fn(sess)
	}
	return sess.Form
}

func (s *Store) Controller(chatID int64) *generation.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(chatID).Controller
}

func (s *Store) Metrics(chatID int64) metrics.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(chatID).Metrics()
}

// Reset restores the default form. The controller and its last result
// are kept so an in-flight run still reports back.
func (s *Store) Reset(chatID int64) Form {
	return s.Update(chatID, func(sess *Session) {
		sess.Form = s.defaultForm()
	})
}

func (s *Store) Len() int {
	return s.sessions.ItemCount()
}

func (s *Store) getOrCreateLocked(chatID int64) *Session {
	key := strconv.FormatInt(chatID, 10)
	if v, ok := s.sessions.Get(key); ok {
		if sess, ok := v.(*Session); ok {
			sess.LastActivity = time.Now()
			s.sessions.Set(key, sess, s.ttl)
			return sess
		}
	}

	sess := &Session{
		ChatID:       chatID,
		Form:         s.defaultForm(),
		Controller:   s.newController(chatID),
		LastActivity: time.Now(),
	}
	s.sessions.Set(key, sess, s.ttl)
	return sess
}

func (s *Store) defaultForm() Form {
	return Form{
		Script:        s.defaults.Script,
		SceneCount:    s.defaults.SceneCount,
		Niche:         s.defaults.Niche,
		StyleKeywords: s.defaults.StyleKeywords,
		AspectRatio:   s.defaults.AspectRatio,
	}
}
