package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"scene-prompt-studio/internal/config"
	"scene-prompt-studio/internal/gemini"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/handlers"
	"scene-prompt-studio/internal/httpclient"
	"scene-prompt-studio/internal/ratelimit"
	"scene-prompt-studio/internal/scriptbuf"
	"scene-prompt-studio/internal/session"
	"scene-prompt-studio/internal/telegram"
)

const updateTimeout = 2 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireTelegram()
	}
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	remote, err := newRemote(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("gemini init failed", "err", err)
		os.Exit(1)
	}

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Runner: generation.NewExecutor(generation.ExecutorOptions{
			Remote: remote,
			Logger: logger,
		}),
		Limiter: ratelimit.NewKeyed(cfg.GenerateRatePerMinute, 2),
		Logger:  logger,
	})

	sessions := session.NewStore(session.Options{
		TTL:           cfg.SessionTTL,
		Defaults:      cfg.FormDefaults,
		NewController: handler.NewController,
	})
	handler.SetSessions(sessions)

	aggregator := scriptbuf.New(scriptbuf.Options{
		Debounce: cfg.ScriptDebounce,
		OnFlush:  handler.HandleScript,
	})
	handler.SetScriptAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username(), "backend", cfg.GeminiBackend)

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrent)

	for {
		select {
		case <-gctx.Done():
			logger.Info("shutting down")
			_ = g.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				_ = g.Wait()
				return
			}

			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(gctx, updateTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
				return nil
			})
		}
	}
}

func newRemote(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *slog.Logger) (generation.Remote, error) {
	if cfg.GeminiBackend == config.BackendSDK {
		return gemini.NewSDK(ctx, gemini.SDKOptions{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	}

	return gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	}), nil
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
