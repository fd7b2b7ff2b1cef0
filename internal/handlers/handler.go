package handlers

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/ratelimit"
	"scene-prompt-studio/internal/scriptbuf"
	"scene-prompt-studio/internal/session"
	"scene-prompt-studio/internal/telegram"
)

// Messenger is the part of the Telegram client the handler talks to.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTyping(chatID int64)
	SendKeyboard(chatID int64, text string, rows [][]telegram.Button) error
	AnswerCallback(callbackID, text string) error
	File(fileID, name, mimeType string) attachment.File
}

type Options struct {
	Telegram Messenger
	Runner   generation.Runner
	Sessions *session.Store
	Limiter  *ratelimit.Keyed
	Logger   *slog.Logger
}

type Handler struct {
	tg         Messenger
	runner     generation.Runner
	sessions   *session.Store
	limiter    *ratelimit.Keyed
	logger     *slog.Logger
	aggregator *scriptbuf.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Handler{
		tg:       opts.Telegram,
		runner:   opts.Runner,
		sessions: opts.Sessions,
		limiter:  opts.Limiter,
		logger:   logger,
	}
}

// SetSessions attaches the store. The store is usually built after the
// handler because its controllers report back through NewController.
func (h *Handler) SetSessions(s *session.Store) {
	h.sessions = s
}

func (h *Handler) SetScriptAggregator(ag *scriptbuf.Aggregator) {
	h.aggregator = ag
}

// NewController builds the generation controller for one chat. Every status
// change is reported to that chat.
func (h *Handler) NewController(chatID int64) *generation.Controller {
	return generation.NewController(generation.ControllerOptions{
		Executor: h.runner,
		Logger:   h.logger.With("chat_id", chatID),
		OnChange: func(s generation.Status) {
			h.deliver(chatID, s)
		},
	})
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(chatID, msg.Photo)
	}

	if msg.Document != nil {
		return h.handleDocument(ctx, chatID, msg.Document)
	}

	if msg.Text != "" {
		return h.handleText(chatID, msg.MessageID, msg.Text)
	}

	return nil
}

// HandleScript stores a script assembled from debounced message fragments.
func (h *Handler) HandleScript(script scriptbuf.Script) {
	h.sessions.Update(script.ChatID, func(sess *session.Session) {
		sess.Form.Script = script.Text
		sess.Form.AwaitingScript = false
	})
	h.logger.Debug("script stored", "chat_id", script.ChatID, "fragments", script.Fragments)

	if err := h.tg.SendText(script.ChatID, scriptSavedText(h.sessions.Metrics(script.ChatID))); err != nil {
		h.logger.Error("send script confirmation failed", "err", err)
	}
}

func (h *Handler) deliver(chatID int64, s generation.Status) {
	var err error
	switch st := s.(type) {
	case generation.Loading:
		h.tg.SendTyping(chatID)
		err = h.tg.SendText(chatID, loadingText)
	case generation.Succeeded:
		content := st.Content
		if strings.TrimSpace(content) == "" {
			content = emptyResultText
		}
		err = h.tg.SendText(chatID, content)
	case generation.Failed:
		err = h.tg.SendText(chatID, errorHeader+"\n\n"+st.Message)
	}
	if err != nil {
		h.logger.Error("deliver status failed", "chat_id", chatID, "state", s.State(), "err", err)
	}
}

func (h *Handler) allow(chatID int64) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow("chat:" + strconv.FormatInt(chatID, 10))
}

func largestPhoto(photos []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := photos[len(photos)-1]
	for _, p := range photos {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}
