package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guiyumin/vsum/internal/core/ai"
	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/logger"
	"github.com/guiyumin/vsum/internal/core/version"
	"github.com/guiyumin/vsum/internal/server"
)

func main() {
	port := flag.Int("port", 0, "HTTP listen port (default: 8080)")
	output := flag.String("output", "", "summary directory or remote (name:path)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vsum-server %s\n", version.Version)
		return
	}

	if !logger.ValidLevel(*logLevel) {
		fmt.Fprintf(os.Stderr, "invalid log level: %s\n", *logLevel)
		os.Exit(2)
	}
	log := logger.New(*logLevel)
	ctx := context.Background()

	cfg := config.LoadOrDefault()
	if err := cfg.ApplyEnv(); err != nil {
		log.Error(ctx, "Failed to load environment: %v", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *output != "" {
		cfg.OutputDir = *output
	}

	// Encrypted keys are unlocked with VSUM_PIN; there is no terminal to ask.
	pipeline, err := ai.NewPipeline(cfg, os.Getenv("VSUM_PIN"), log)
	if err != nil {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}
	srv := server.New(cfg, server.PipelineProcess(pipeline), log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info(ctx, "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		srv.Stop(shutdownCtx)
	}()

	if err := srv.Start(); err != nil {
		log.Error(ctx, "Server error: %v", err)
		os.Exit(1)
	}
}
