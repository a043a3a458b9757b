package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tabsentry/internal/audit"
	"tabsentry/internal/chat"
	"tabsentry/internal/config"
	"tabsentry/internal/llm"
	"tabsentry/internal/logging"
	"tabsentry/internal/redact"
	"tabsentry/internal/session"
	"tabsentry/internal/store"
	"tabsentry/internal/table"
	"tabsentry/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"llm_enabled", cfg.LLM.APIKey != "",
		"journal_enabled", cfg.Journal.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	table.MaxFileSize = cfg.Upload.MaxFileSize

	// The journal is an optional side channel: a broken database file
	// degrades to a no-op rather than blocking dataset loads.
	var journal store.Journal = store.NopJournal{}
	if cfg.Journal.Enabled {
		sqlJournal, err := store.NewSQLite(cfg.Journal.Path)
		if err != nil {
			slog.Warn("journal unavailable, continuing without load history", "path", cfg.Journal.Path, "error", err)
		} else {
			journal = sqlJournal
			defer sqlJournal.Close()
			slog.Info("journal opened", "path", cfg.Journal.Path)
		}
	}

	sessions := session.NewStore(cfg.Auth.AccessSecret)
	engine := audit.NewEngine(audit.DefaultConfig())
	policy := redact.DefaultPolicy()

	llmCfg := llm.DefaultConfig(cfg.LLM.APIKey)
	llmCfg.BaseURL = cfg.LLM.BaseURL
	llmCfg.Model = cfg.LLM.Model
	llmCfg.Timeout = cfg.LLM.Timeout
	client := llm.NewClient(llmCfg)
	if !client.Enabled() {
		slog.Warn("no model API key configured, conversation and report narrative disabled")
	}

	builder := chat.NewBuilder(chat.BuilderConfig{
		HeadRows:        cfg.Context.HeadRows,
		MaxContextChars: cfg.Context.MaxChars,
	})
	controller := chat.NewController(sessions, client, builder, policy)

	server := web.NewServer(cfg, sessions, engine, policy, builder, controller, journal)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "session", sessions.ID())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
