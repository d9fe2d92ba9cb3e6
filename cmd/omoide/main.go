// Package main is the Omoide CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/omoide/internal/cache"
	"github.com/hyperjump/omoide/internal/config"
	"github.com/hyperjump/omoide/internal/enrich"
	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/narrative"
	"github.com/hyperjump/omoide/internal/ratelimit"
	"github.com/hyperjump/omoide/internal/server"
	"github.com/hyperjump/omoide/internal/synth"
	"github.com/hyperjump/omoide/internal/watcher"
	"github.com/hyperjump/omoide/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/omoide/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if that
// exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "synthesize":
		runSynthesize()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("omoide version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store        *cache.MemoryStore
	Limiter      *ratelimit.Limiter
	Narrative    *narrative.Client
	Orchestrator *synth.Orchestrator
	stopSweepers chan struct{}
}

// Close stops background sweepers.
func (c *Components) Close() {
	if c.stopSweepers != nil {
		close(c.stopSweepers)
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) *Components {
	stop := make(chan struct{})

	store := cache.NewMemoryStore(cache.WithLogger(logger))
	store.StartSweeper(cfg.Cache.SweepInterval(), stop)

	limiter := ratelimit.NewLimiter(
		cfg.RateLimit.Limit,
		cfg.RateLimit.Window(),
		ratelimit.WithLogger(logger),
		ratelimit.WithBypass(cfg.RateLimit.Bypass),
	)
	limiter.StartSweeper(cfg.RateLimit.SweepInterval(), stop)

	wiki := enrich.NewWikipediaClient(
		cfg.Enrich.WikipediaBaseURL,
		cfg.Enrich.SearchTimeout(),
		enrich.WithWikipediaLogger(logger),
	)
	weather := enrich.NewWeatherClient(
		cfg.Enrich.WeatherBaseURL,
		cfg.Enrich.WeatherAPIKey,
		cfg.Enrich.WeatherTimeout(),
	)
	coordinator := enrich.NewCoordinator(store, wiki, weather, cfg.Cache.VenueTTL(),
		enrich.WithCoordinatorLogger(logger))

	model := narrative.NewClient(
		cfg.Narrative.BaseURL,
		cfg.Narrative.Model,
		cfg.Narrative.Timeout(),
		narrative.WithClientLogger(logger),
		narrative.WithAPIKey(cfg.Narrative.APIKey),
	)
	model.SetEnabled(cfg.Narrative.EnabledOrDefault())

	orch := synth.NewOrchestrator(limiter, coordinator, model, synth.WithLogger(logger))

	return &Components{
		Store:        store,
		Limiter:      limiter,
		Narrative:    model,
		Orchestrator: orch,
		stopSweepers: stop,
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components := initializeComponents(cfg, logger)
	defer components.Close()

	// Hot-reload the operational toggles; everything else needs a restart.
	watchSvc := watcher.New(resolvedConfigPath, func(newCfg *config.Config) {
		components.Narrative.SetEnabled(newCfg.Narrative.EnabledOrDefault())
		components.Limiter.SetBypass(newCfg.RateLimit.Bypass)
		logger.Info("applied reloaded config",
			zap.Bool("narrative_enabled", newCfg.Narrative.EnabledOrDefault()),
			zap.Bool("rate_limit_bypass", newCfg.RateLimit.Bypass),
		)
	}, watcher.WithLogger(logger))
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Limiter,
		components.Store,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSynthesize() {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the pipeline in-process)")
	inputPath := fs.String("f", "", "request JSON file (default: stdin)")
	clientID := fs.String("client-id", "omoide-cli", "client identifier for rate limiting")
	_ = fs.Parse(os.Args[2:])

	var input []byte
	var err error
	if *inputPath != "" {
		input, err = os.ReadFile(*inputPath)
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read request: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		record, err := synthesizeViaHTTP(*serverURL, *clientID, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Synthesis failed: %v\n", err)
			os.Exit(1)
		}
		writeRecord(record)
		return
	}

	// Direct in-process pipeline (when no server is running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var req models.SynthesisRequest
	if err := json.Unmarshal(input, &req); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request JSON: %v\n", err)
		os.Exit(1)
	}

	components := initializeComponents(cfg, logger)
	defer components.Close()

	record, err := components.Orchestrator.Synthesize(context.Background(), *clientID, &req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Synthesis failed: %v\n", err)
		os.Exit(1)
	}
	writeRecord(record)
}

func synthesizeViaHTTP(serverURL, clientID string, body []byte) (*models.MomentRecord, error) {
	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/moments/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", clientID)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var record models.MomentRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &record, nil
}

func writeRecord(record *models.MomentRecord) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	for k, v := range status {
		fmt.Printf("%s: %v\n", k, v)
	}
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path to create")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if !*force {
		if _, err := os.Stat(*configPath); err == nil {
			fmt.Fprintf(os.Stderr, "Config already exists at %s (use --force to overwrite)\n", *configPath)
			os.Exit(1)
		}
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := os.MkdirAll(filepath.Dir(*configPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create config directory: %v\n", err)
		os.Exit(1)
	}
	if err := config.Save(*configPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
}

func printUsage() {
	fmt.Println(`omoide - travel moment synthesis service

Usage:
  omoide server [flags]            Start the HTTP server
  omoide synthesize [flags]        Synthesize a moment from a request JSON
  omoide status [flags]            Show server status
  omoide init [flags]              Write a default config file
  omoide version                   Show version
  omoide help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/omoide/config.yaml)
  --debug            Enable debug logging

Synthesize Flags:
  --config string     Config file path (for in-process mode)
  --server string     Server URL (default: http://localhost:8080). Use --server "" to run in-process.
  -f string           Request JSON file (default: stdin)
  --client-id string  Client identifier for rate limiting (default: omoide-cli)

Examples:
  omoide server
  omoide synthesize -f moment.json
  cat moment.json | omoide synthesize --server ""
  omoide status`)
}
