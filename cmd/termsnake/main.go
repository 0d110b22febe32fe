// Command termsnake plays snake in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/termsnake/config"
	"github.com/brensch/termsnake/game"
	"github.com/brensch/termsnake/logging"
	"github.com/brensch/termsnake/tui"
)

func main() {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("termsnake: %v", err)
	}
}

// run plays until the UI exits. Deferred cleanup, including closing the log
// file, completes before main decides the exit status.
func run(cfg config.Config) error {
	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := tui.NewBridge()
	engine, err := game.NewEngine(cfg.Engine(logger), bridge.Handlers())
	if err != nil {
		logger.Error("create game", "err", err)
		return fmt.Errorf("create game: %w", err)
	}

	model := tui.NewModel(engine, bridge.Events(), cfg.Speed, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	// The UI is gone: unblock pending publishers before stopping the timer.
	bridge.Close()
	engine.Stop()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		logger.Error("program exited", "err", runErr)
		return runErr
	}
	logger.Info("bye", "score", engine.Snapshot().Score)
	return nil
}
