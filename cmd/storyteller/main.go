package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storyforge/internal/logger"
	"storyforge/internal/models"
	"storyforge/internal/session"
	"storyforge/internal/storyclient"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Story server base URL")
	language := flag.String("language", models.DefaultLanguage, "Story language")
	level := flag.Int("level", models.DefaultStyleLevel, "Writing style level (1-5)")
	timeout := flag.Duration("timeout", 0, "Request timeout (0 - no timeout)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: *logLevel, Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client := storyclient.New(*serverURL, *timeout, log)
	sess := session.New(client, log)
	if err := sess.SetLanguage(*language); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -language: %v\n", err)
		os.Exit(2)
	}
	if err := sess.SetLevel(*level); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -level: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if languages, err := client.Languages(ctx); err != nil {
		log.Warn("Story server is not reachable yet", zap.String("server", *serverURL), zap.Error(err))
	} else {
		log.Info("Connected to story server", zap.Strings("languages", languages.Languages))
	}
	cancel()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)

	app := &cli{sess: sess, out: os.Stdout, interrupts: interrupts}
	if err := app.run(context.Background(), os.Stdin); err != nil {
		log.Error("Storyteller stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
