package handlers

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/prompt"
	"scene-prompt-studio/internal/scriptbuf"
	"scene-prompt-studio/internal/session"
	"scene-prompt-studio/internal/telegram"
)

const aspectCallbackPrefix = "aspect:"

func (h *Handler) handleCommand(ctx context.Context, chatID int64, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID, startText)
	case "help":
		return h.tg.SendText(chatID, helpText)
	case "script":
		return h.commandScript(chatID, msg.MessageID, args)
	case "scenes":
		if args == "" {
			return h.tg.SendText(chatID, "Usage: /scenes <number>\nExample: /scenes 5")
		}
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.SceneCount = args })
		return h.tg.SendText(chatID, "Number of scenes: "+args)
	case "niche":
		if args == "" {
			return h.tg.SendText(chatID, "Usage: /niche <topic>\nExample: /niche Sci-Fi, History, Tech Review")
		}
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.Niche = args })
		return h.tg.SendText(chatID, "Topic / niche: "+args)
	case "style":
		if args == "" {
			return h.tg.SendText(chatID, "Usage: /style <keywords>\nExample: /style cinematic, realistic, 4K, dramatic light")
		}
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.StyleKeywords = args })
		return h.tg.SendText(chatID, "Style keywords: "+args)
	case "aspect":
		if args != "" {
			return h.setAspect(chatID, args)
		}
		return h.tg.SendKeyboard(chatID, "Choose an aspect ratio:", aspectKeyboard())
	case "clearimage":
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.StyleImage = nil })
		return h.tg.SendText(chatID, "Style image removed.")
	case "stats":
		return h.tg.SendText(chatID, statsText(h.sessions.Metrics(chatID)))
	case "show":
		return h.tg.SendText(chatID, formText(h.sessions.Snapshot(chatID), h.sessions.Metrics(chatID)))
	case "generate":
		return h.commandGenerate(ctx, chatID)
	case "reset":
		if h.aggregator != nil {
			h.aggregator.Discard(chatID)
		}
		h.sessions.Reset(chatID)
		return h.tg.SendText(chatID, "Form reset to defaults.")
	default:
		return h.tg.SendText(chatID, "Unknown command. Use /help.")
	}
}

func (h *Handler) commandScript(chatID int64, messageID int, args string) error {
	if args == "" {
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.AwaitingScript = true })
		return h.tg.SendText(chatID, "Send the script text now. Long scripts may be sent in several messages. You can also send a .txt file.")
	}

	// Long pastes arrive split: the command carries the first fragment and
	// the rest follow as plain messages.
	if h.aggregator != nil {
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.AwaitingScript = true })
		h.aggregator.Add(scriptbuf.Fragment{ChatID: chatID, MessageID: messageID, Text: args})
		return nil
	}

	h.HandleScript(scriptbuf.Script{ChatID: chatID, Text: args, Fragments: 1})
	return nil
}

func (h *Handler) commandGenerate(ctx context.Context, chatID int64) error {
	if h.aggregator != nil && h.aggregator.Pending(chatID) {
		h.aggregator.Flush(chatID)
	}

	ctrl := h.sessions.Controller(chatID)
	if _, loading := ctrl.Status().(generation.Loading); loading {
		return h.tg.SendText(chatID, alreadyGeneratingText)
	}
	if !h.allow(chatID) {
		return h.tg.SendText(chatID, rateLimitedText)
	}

	form := h.sessions.Snapshot(chatID)
	if !ctrl.Trigger(ctx, form.Request()) {
		return h.tg.SendText(chatID, alreadyGeneratingText)
	}
	h.logger.Info("generation triggered", "chat_id", chatID, "has_style_image", form.StyleImage != nil)
	return nil
}

func (h *Handler) setAspect(chatID int64, value string) error {
	ratio, err := prompt.ParseAspectRatio(value)
	if err != nil {
		return h.tg.SendText(chatID, "Unknown aspect ratio. Choose one of: "+aspectList())
	}
	h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.AspectRatio = ratio })
	return h.tg.SendText(chatID, "Aspect ratio: "+ratio.String())
}

func (h *Handler) handleCallback(_ context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, aspectCallbackPrefix) {
		return h.tg.AnswerCallback(q.ID, "")
	}

	chatID := q.Message.Chat.ID
	ratio, err := prompt.ParseAspectRatio(strings.TrimPrefix(data, aspectCallbackPrefix))
	if err != nil {
		return h.tg.AnswerCallback(q.ID, "Unknown aspect ratio")
	}

	h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.AspectRatio = ratio })
	if err := h.tg.AnswerCallback(q.ID, "Aspect ratio: "+ratio.String()); err != nil {
		h.logger.Warn("answer callback failed", "err", err)
	}
	return h.tg.SendText(chatID, "Aspect ratio: "+ratio.String())
}

func (h *Handler) handleText(chatID int64, messageID int, text string) error {
	form := h.sessions.Snapshot(chatID)
	if !form.AwaitingScript {
		return h.tg.SendText(chatID, "Use /script to send a script, or /help to see all commands.")
	}

	if h.aggregator != nil {
		h.aggregator.Add(scriptbuf.Fragment{ChatID: chatID, MessageID: messageID, Text: text})
		return nil
	}
	h.HandleScript(scriptbuf.Script{ChatID: chatID, Text: text, Fragments: 1})
	return nil
}

// handlePhoto keeps only the file reference. The image is downloaded and
// encoded when a generation runs.
func (h *Handler) handlePhoto(chatID int64, photos []tgbotapi.PhotoSize) error {
	photo := largestPhoto(photos)
	file := h.tg.File(photo.FileID, "style.jpg", "image/jpeg")

	h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.StyleImage = file })
	return h.tg.SendText(chatID, "Style image set. It will be sent as a style reference. Use /clearimage to remove it.")
}

func (h *Handler) handleDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) error {
	file := h.tg.File(doc.FileID, doc.FileName, doc.MimeType)

	if strings.HasPrefix(strings.ToLower(doc.MimeType), "image/") {
		h.sessions.Update(chatID, func(sess *session.Session) { sess.Form.StyleImage = file })
		return h.tg.SendText(chatID, "Style image set from file "+doc.FileName+".")
	}

	text, err := attachment.ReadScript(ctx, file)
	if err != nil {
		var unsupported *attachment.UnsupportedFileTypeError
		if errors.As(err, &unsupported) {
			return h.tg.SendText(chatID, attachment.UnsupportedFileTypeNotice)
		}
		h.logger.Error("script download failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, "Failed to read the script file.")
	}

	if h.aggregator != nil {
		h.aggregator.Discard(chatID)
	}
	h.HandleScript(scriptbuf.Script{ChatID: chatID, Text: text, Fragments: 1})
	return nil
}

func aspectKeyboard() [][]telegram.Button {
	options := prompt.AspectRatios()
	rows := make([][]telegram.Button, 0, (len(options)+1)/2)
	for i := 0; i < len(options); i += 2 {
		row := []telegram.Button{{Text: options[i].Name, Data: aspectCallbackPrefix + options[i].Key.String()}}
		if i+1 < len(options) {
			row = append(row, telegram.Button{Text: options[i+1].Name, Data: aspectCallbackPrefix + options[i+1].Key.String()})
		}
		rows = append(rows, row)
	}
	return rows
}

func aspectList() string {
	names := make([]string, 0, 5)
	for _, o := range prompt.AspectRatios() {
		names = append(names, o.Key.String())
	}
	return strings.Join(names, ", ")
}
