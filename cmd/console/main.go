package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/console-university/internal/config"
	"github.com/jwebster45206/console-university/internal/logger"
	"github.com/jwebster45206/console-university/pkg/presenter"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	LogFile    string
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:10000"),
		Timeout:    30 * time.Second,
		LogFile:    os.Getenv("CONSOLE_LOG_FILE"),
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "console")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.New(logOut, &config.Config{LogLevel: slog.LevelDebug})

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	first, err := createGame(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create game: %v\n", err)
		os.Exit(1)
	}
	log.Info("Game created", "game_id", first.GameStateID.String())

	var p *tea.Program
	adapter := programAdapter{send: func(msg any) { p.Send(msg) }}
	runner := presenter.NewRunner(adapter, log)

	p = tea.NewProgram(NewConsoleUI(cfg, client, runner, newSceneView(), first),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	_, runErr := p.Run()
	runner.Stop()

	if err := deleteGame(client, cfg.APIBaseURL, first.GameStateID); err != nil {
		log.Warn("Failed to delete game", "error", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
