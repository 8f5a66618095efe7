// Command driftworld runs the deterministic world simulation server.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"driftworld/internal/api"
	"driftworld/internal/catalog"
	"driftworld/internal/config"
	"driftworld/internal/llm"
	"driftworld/internal/npc"
	"driftworld/internal/quest"
	"driftworld/internal/session"
	"driftworld/internal/turn"
	"driftworld/internal/worldgen"
)

func main() {
	cfg, err := config.Load("driftworld.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("driftworld starting", "port", cfg.Port, "llm", cfg.DeepSeekAPIKey != "")

	// Catalog violations are fatal at init.
	cat, err := catalog.Load()
	if err != nil {
		logger.Error("catalog invalid", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "traits", len(cat.Traits), "jobs", len(cat.Jobs))

	os.MkdirAll(filepath.Dir(cfg.JournalPath), 0o755)
	journal, err := session.OpenJournal(cfg.JournalPath)
	if err != nil {
		logger.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	logger.Info("journal opened", "path", cfg.JournalPath)

	client := llm.NewClient(cfg.DeepSeekAPIKey)
	if !client.Enabled() {
		logger.Warn("no DEEPSEEK_API_KEY; parsing and narration run on fallbacks")
	}

	gen := worldgen.New(cat, npc.NewGenerator(cat))
	parser := llm.NewParser(client, logger)
	writer := llm.NewNarrativeWriter(client, logger)
	quests := quest.NewEngine(logger, writer)
	orch := turn.New(logger, gen, parser, quests)

	server := &api.Server{
		Log:      logger,
		Store:    session.NewStore(),
		Saves:    session.NewSaves(cfg.SavesDir),
		Journal:  journal,
		Orch:     orch,
		Narrator: llm.NewNarrator(client, logger),
		Port:     cfg.Port,
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
