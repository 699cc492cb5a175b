// Package main is the Manabu CLI entry point.
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
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/classify"
	"github.com/hyperjump/manabu/internal/config"
	"github.com/hyperjump/manabu/internal/ingest"
	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/respond"
	"github.com/hyperjump/manabu/internal/retrieve"
	"github.com/hyperjump/manabu/internal/seed"
	"github.com/hyperjump/manabu/internal/server"
	"github.com/hyperjump/manabu/internal/storage"
	"github.com/hyperjump/manabu/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/manabu/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "manabu server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
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
	case "ask":
		runAsk()
	case "teach":
		runTeach()
	case "seed":
		runSeed()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("manabu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: manabu <command> [flags]

Commands:
  server    Run the HTTP API server
  ask       Ask a question or evaluate an expression
  teach     Teach a fact ("the capital of France is Paris")
  seed      Load the baseline arithmetic facts
  ingest    Ingest a document file or URL into the store
  status    Show fact counts and storage info
  version   Print version`)
}

// components wires the store and the engine packages for direct (non-HTTP)
// commands.
type components struct {
	Store     storage.Store
	Responder *respond.Responder
	Ingester  *ingest.Ingester
	Seeder    *seed.Seeder
}

func (c *components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMongoStore(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.Storage.QueryTimeout)
	case "sqlite", "":
		return storage.NewSQLiteStore(cfg.Storage.DatabasePath, cfg.Storage.QueryTimeout)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	classifier := classify.New(store, logger)
	retriever := retrieve.New(store, classifier, retrieve.Config{
		MinContentLength: cfg.Retrieval.MinContentLength,
		MaxContentLength: cfg.Retrieval.MaxContentLength,
		CandidateLimit:   cfg.Retrieval.CandidateLimit,
		TrustedSource:    cfg.Retrieval.TrustedSource,
	}, logger)
	responder := respond.New(store, retriever, classifier, logger)
	ingester := ingest.New(store, classifier, ingest.Config{
		MinStatementLength: cfg.Retrieval.MinContentLength,
		MaxStatementLength: cfg.Retrieval.MaxContentLength,
		MaxStatements:      cfg.Ingest.MaxStatements,
		FetchTimeout:       cfg.Ingest.FetchTimeout,
	}, logger)
	return &components{
		Store:     store,
		Responder: responder,
		Ingester:  ingester,
		Seeder:    seed.New(store, cfg.Seed.MaxOperand, logger),
	}, nil
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

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	if cfg.Seed.EnabledOrDefault() {
		if _, err := comps.Seeder.Run(context.Background()); err != nil {
			logger.Fatal("Failed to seed arithmetic facts", zap.Error(err))
		}
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watcher *ingest.Watcher
	if len(cfg.Ingest.WatchDirectories) > 0 {
		watcher = ingest.NewWatcher(comps.Ingester, cfg.Ingest.WatchDirectories, cfg.Ingest.Extensions, logger)
		if err := watcher.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watcher.SyncExisting(watchCtx)
	}

	srv := server.NewServer(comps.Responder, comps.Ingester, comps.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watcher != nil {
		watcher.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildMessage joins all positional args with spaces so multi-word messages
// work the same with or without shell quoting.
func buildMessage(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// message to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	sendMessage("ask", "Usage: manabu ask [flags] <question>", func(msg string) string { return msg })
}

func runTeach() {
	// The explicit prefix makes even unstructured statements stick.
	sendMessage("teach", "Usage: manabu teach [flags] <statement>", func(msg string) string { return "teach: " + msg })
}

// sendMessage runs the shared ask/teach flow: parse flags, send the message
// through the HTTP API when a server URL is set, or answer directly against
// the store otherwise.
func sendMessage(name, usage string, wrap func(string) string) {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}
	message := wrap(buildMessage(fs.Args()))
	if message == "" {
		fmt.Println(usage)
		os.Exit(1)
	}

	var answer *models.Answer
	if *serverURL != "" {
		res, err := chatViaHTTP(*serverURL, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		answer = res
	} else {
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
		comps, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()
		answer, err = comps.Responder.Respond(context.Background(), message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(answer); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Println(answer.Text)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func chatViaHTTP(serverURL, message string) (*models.Answer, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var answer models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	count, err := comps.Seeder.Run(context.Background())
	if err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
	if count == 0 {
		fmt.Println("Arithmetic facts already seeded")
		return
	}
	fmt.Printf("Seeded %d arithmetic facts\n", count)
}

func runIngest() {
	args := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	urlTarget := fs.String("url", "", "URL to scrape instead of a file path")
	_ = fs.Parse(args)

	if *urlTarget == "" && fs.NArg() < 1 {
		fmt.Println("Usage: manabu ingest [flags] <file> | manabu ingest -url <url>")
		os.Exit(1)
	}

	var path string
	if *urlTarget == "" {
		path, _ = filepath.Abs(fs.Arg(0))
	}

	if *serverURL != "" {
		result, err := ingestViaHTTP(*serverURL, path, *urlTarget)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %s: %d stored, %d skipped\n", result.Source, result.Stored, result.Skipped)
		return
	}

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
	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	var result *ingest.Result
	if *urlTarget != "" {
		result, err = comps.Ingester.IngestURL(context.Background(), *urlTarget)
	} else {
		result, err = comps.Ingester.IngestFile(context.Background(), path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %s: %d stored, %d skipped\n", result.Source, result.Stored, result.Skipped)
}

func ingestViaHTTP(serverURL, path, url string) (*ingest.Result, error) {
	payload := map[string]string{}
	if url != "" {
		payload["url"] = url
	} else {
		payload["path"] = path
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result ingest.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Facts          int64                  `json:"facts"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
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
		comps, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()
		count, err := comps.Store.Count(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count facts failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Facts: count,
			Config: map[string]interface{}{
				"storage_driver": cfg.Storage.Driver,
				"database_path":  cfg.Storage.DatabasePath,
			},
		}
		if cfg.Storage.Driver == "sqlite" {
			if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath); err == nil {
				status.DiskUsageBytes = &diskBytes
			}
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("facts:             %d   # count of stored facts\n", status.Facts)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d   # database on disk\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			if driver, ok := status.Config["storage_driver"]; ok {
				fmt.Printf("storage_driver:    %v\n", driver)
			}
			if path, ok := status.Config["database_path"]; ok {
				fmt.Printf("database_path:     %v\n", path)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}
