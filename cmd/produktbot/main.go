// Package main is the Produktbot CLI entry point.
package main

import (
	"bufio"
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

	"github.com/skarvik/produktbot/internal/cli"
	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/embedding"
	"github.com/skarvik/produktbot/internal/engine"
	"github.com/skarvik/produktbot/internal/metrics"
	"github.com/skarvik/produktbot/internal/models"
	"github.com/skarvik/produktbot/internal/nlp"
	"github.com/skarvik/produktbot/internal/server"
	"github.com/skarvik/produktbot/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/produktbot/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "produktbot server" from the project dir uses the project's
// config (including debug).
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
	case "chat":
		runChat()
	case "query":
		runQuery()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("produktbot version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (query analysis, entity extraction, etc.)")
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	metrics.Init()

	srv := server.NewServer(components.Engine, components.Store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	fmt.Println("Produktbot. Ställ en fråga eller använd -t/-c/-s/-f <artikelnr>.")
	fmt.Println("Skriv \"avsluta\" för att avsluta.")

	sessionCtx := models.NewSessionContext()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "avsluta" || input == "exit" || input == "quit" {
			break
		}
		resp := components.Engine.ProcessInput(context.Background(), input, sessionCtx)
		fmt.Println()
		fmt.Println(resp.Text)
		fmt.Println()
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: produktbot query [flags] <text>")
		os.Exit(1)
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Println("Usage: produktbot query [flags] <text>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	resp := components.Engine.ProcessInput(context.Background(), text, models.NewSessionContext())
	if err := cli.WriteResponse(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load the corpus directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var stats engine.Stats
	if *serverURL != "" {
		res, err := statsViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = *res
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
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		stats = components.Engine.Stats()
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("total_queries:       %d\n", stats.TotalQueries)
		fmt.Printf("successful_queries:  %d\n", stats.SuccessfulQueries)
		fmt.Printf("command_queries:     %d\n", stats.CommandQueries)
		fmt.Printf("natural_language:    %d\n", stats.NaturalLanguageQueries)
		fmt.Printf("ambiguous_queries:   %d\n", stats.AmbiguousQueries)
		fmt.Printf("failures:            %d\n", stats.Failures)
		fmt.Printf("success_rate:        %.2f\n", stats.SuccessRate)
		fmt.Printf("uptime_seconds:      %.0f\n", stats.UptimeSeconds)
		fmt.Println()
		fmt.Println("# corpus")
		fmt.Printf("products:            %d\n", stats.Corpus.Products)
		fmt.Printf("article_numbers:     %d\n", stats.Corpus.ArticleNumbers)
		fmt.Printf("eans:                %d\n", stats.Corpus.EANs)
		fmt.Printf("text_index_terms:    %d\n", stats.Corpus.TextIndexTerms)
		fmt.Printf("compatibility:       %d\n", stats.Corpus.CompatibilityEntries)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statsViaHTTP(serverURL string) (*engine.Stats, error) {
	resp, err := http.Get(serverURL + "/api/v1/stats")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s engine.Stats
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Store    *corpus.Store
	Embedder embedding.Embedder
	Engine   *engine.Engine
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := corpus.NewStore(&cfg.Data, logger.Named("corpus"))
	if err != nil {
		return nil, fmt.Errorf("failed to load product corpus: %w", err)
	}

	embedder := embedding.NewFromConfig(&cfg.NLP, logger.Named("embedding"))

	var recognizer nlp.EntityRecognizer
	if cfg.NLP.UseNLP {
		recognizer = nlp.NewProseRecognizer(logger.Named("ner"))
	} else {
		recognizer = nlp.NewNoopRecognizer()
	}

	eng := engine.New(context.Background(), cfg, store, embedder, recognizer, logger.Named("engine"))

	return &Components{
		Store:    store,
		Embedder: embedder,
		Engine:   eng,
	}, nil
}

func printUsage() {
	fmt.Println(`produktbot - Swedish product data query engine

Usage:
  produktbot server [flags]         Start the HTTP server
  produktbot chat [flags]           Interactive question session
  produktbot query [flags] <text>   Answer a single question
  produktbot stats [flags]          Show engine and corpus statistics
  produktbot version                Show version
  produktbot help                   Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/produktbot/config.yaml)
  --debug            Enable debug logging (query analysis, entity extraction, etc.)

Chat Flags:
  --config string    Config file path
  --debug            Enable debug logging

Query Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Stats Flags:
  --config string    Config file path (used when --server is empty)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load the corpus directly.
  --output string    Output format: text or json (default: text)

Examples:
  produktbot server
  produktbot chat
  produktbot query "Vilka mått har låshus 310-50?"
  produktbot query -- -t 50091812
  produktbot query --output json "passar cylinder 1301 till låshus 310-50?"
  produktbot stats --output json`)
}
