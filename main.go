package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Stratton-Carroll/survey-model/internal/api"
	"github.com/Stratton-Carroll/survey-model/internal/config"
	"github.com/Stratton-Carroll/survey-model/views"
)

const Version = "0.1.0"

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		configPath  = flag.String("config", "", "path to config file")
		baseURL     = flag.String("api", "", "backend base URL (overrides config)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("survey-tui v%s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	// Fetch failures are logged, not surfaced as crashes; keep the log out
	// of the alternate screen.
	if f, err := tea.LogToFile("survey-tui.log", "survey"); err == nil {
		defer f.Close()
	}

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSecs)*time.Second)

	p := tea.NewProgram(views.NewApp(cfg, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
