package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"tagcomplete/internal/config"
	"tagcomplete/internal/document"
	"tagcomplete/internal/eventbus"
	"tagcomplete/internal/ui"
)

const welcome = "Type @ to mention a person and # to add a hashtag."

func main() {
	var (
		configPath string
		seedPath   string
		logPath    string
	)
	flag.StringVar(&configPath, "config", "", "Path to the configuration file")
	flag.StringVar(&seedPath, "file", "", "Markdown file to start editing")
	flag.StringVar(&logPath, "log", "tagcomplete.log", "Log file")
	flag.Parse()

	// Set up logging
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create event bus
	bus := eventbus.New()
	defer bus.Close()

	// Events reach the UI once the program runs
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventConfigLoaded,
		eventbus.EventLookupFailed,
	} {
		bus.Subscribe(t, forward)
	}

	configSvc := config.NewConfigServiceWithBus(bus)
	if configPath != "" {
		configSvc = config.NewConfigServiceAt(configPath, bus)
	}
	cfg := loadOrCreateConfig(configSvc)

	triggers, err := ui.LoadTriggers(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up triggers: %v\n", err)
		os.Exit(1)
	}
	defer triggers.Close()

	doc, err := loadDocument(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", seedPath, err)
		os.Exit(1)
	}

	uiModel, err := ui.NewModel(ctx, bus, cfg, doc, triggers.Registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating editor: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(uiModel,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	uiModel.SetProgram(p)

	// Start forwarding events to UI in background
	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadOrCreateConfig loads the configuration, writing the defaults on first run
func loadOrCreateConfig(configSvc config.ConfigService) *config.Config {
	if _, err := os.Stat(configSvc.Path()); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := configSvc.Save(cfg); err != nil {
			log.Printf("Failed to save config: %v", err)
		} else {
			log.Printf("Created config at %s", configSvc.Path())
		}
		return cfg
	}

	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return config.DefaultConfig()
	}
	log.Printf("Loaded config from %s", configSvc.Path())
	return cfg
}

func loadDocument(path string) (*document.Document, error) {
	if path == "" {
		return document.New(welcome, ""), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return document.FromMarkdown(src)
}
