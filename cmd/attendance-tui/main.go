package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/controller"
	"github.com/noah-isme/attendance-tracker/internal/page"
	"github.com/noah-isme/attendance-tracker/internal/tui"
	"github.com/noah-isme/attendance-tracker/pkg/config"
	"github.com/noah-isme/attendance-tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseURL := flag.StringP("url", "u", cfg.Client.BaseURL, "attendance server base URL")
	discardStale := flag.Bool("discard-stale", cfg.Client.DiscardStale, "ignore responses overtaken by a newer request")
	flag.Parse()

	logr, err := logger.NewFile(cfg, cfg.Client.LogFile)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(*baseURL, *discardStale, logr); err != nil {
		logr.Error("client failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		_ = logr.Sync()
		os.Exit(1)
	}
}

func run(baseURL string, discardStale bool, logr *zap.Logger) error {
	notifier := &tui.Notifier{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	session, err := page.Open(ctx, baseURL, controller.Options{
		Logger:       logr,
		DiscardStale: discardStale,
		Notify:       notifier.Notify,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	p := tea.NewProgram(tui.New(session.Doc, tui.FromSession(session)), tea.WithAltScreen())
	notifier.Bind(p)

	logr.Info("client started", zap.String("url", baseURL), zap.Bool("discard_stale", discardStale))
	_, err = p.Run()
	return err
}
