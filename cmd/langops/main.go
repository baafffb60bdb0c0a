// langops is the command line entry point for document ingestion and
// sentiment analysis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"langops/pkg/analysis"
	"langops/pkg/client"
	"langops/pkg/config"
	"langops/pkg/hooks"
	"langops/pkg/llm"
	"langops/pkg/llm/provider"
	"langops/pkg/llm/retry"
	"langops/pkg/logx"
	"langops/pkg/metrics"
	"langops/pkg/persistence"
	"langops/pkg/profile"
	"langops/pkg/textutil"
)

// Version information - set by goreleaser via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(ctx, os.Args[2:])
	case "ingest":
		err = cmdIngest(ctx, os.Args[2:])
	case "analyze-doc":
		err = cmdAnalyzeDoc(ctx, os.Args[2:])
	case "secrets":
		err = cmdSecrets(os.Args[2:])
	case "metrics":
		err = cmdMetrics(ctx, os.Args[2:])
	case "version":
		fmt.Printf("langops %s (commit %s)\n", version, commit)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: langops <command> [flags]

commands:
  analyze      classify the sentiment of a piece of text
  ingest       store a document and split it into sentences
  analyze-doc  classify every sentence of a stored document
  secrets      manage encrypted provider credentials
  metrics      query recorded request metrics from Prometheus
  version      print version information`)
}

// app bundles everything a command needs after wiring.
type app struct {
	cfg     *config.Config
	store   *persistence.Store
	service *analysis.Service
}

// buildApp wires config, database, hooks, profiles, and the orchestrator.
func buildApp(projectDir string) (*app, error) {
	cfg, err := config.LoadConfig(projectDir)
	if err != nil {
		return nil, err
	}

	if err := unlockSecrets(projectDir); err != nil {
		return nil, err
	}

	db, err := persistence.InitializeDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	store := persistence.NewStore(db)

	var recorder metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewPrometheusRecorder()
	}

	registry := hooks.NewRegistry()
	if err := analysis.RegisterDefaultHooks(registry, store, recorder); err != nil {
		return nil, err
	}

	defs, err := profile.LoadDefinitions(cfg.ProfilesPath)
	if err != nil {
		return nil, err
	}

	providerCfg := provider.Config{
		AnthropicAPIKey: config.GetSecretOrEmpty(config.SecretAnthropicAPIKey),
		OpenAIAPIKey:    config.GetSecretOrEmpty(config.SecretOpenAIAPIKey),
		GoogleAPIKey:    config.GetSecretOrEmpty(config.SecretGeminiAPIKey),
		OllamaHost:      cfg.OllamaHost,
	}

	policy := retry.NewPolicy(retryConfig(cfg), nil)
	var middlewares []llm.Middleware
	middlewares = append(middlewares, retry.Middleware(policy))

	resolver := profile.NewResolver(defs, registry, providerCfg, middlewares...)
	orch := client.New(resolver)

	return &app{
		cfg:     cfg,
		store:   store,
		service: analysis.NewService(orch, store),
	}, nil
}

// retryConfig maps config file overrides onto the default retry settings.
func retryConfig(cfg *config.Config) retry.Config {
	rc := retry.DefaultConfig
	if cfg.Retry.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelayMS > 0 {
		rc.InitialDelay = time.Duration(cfg.Retry.InitialDelayMS) * time.Millisecond
	}
	if cfg.Retry.MaxDelayMS > 0 {
		rc.MaxDelay = time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond
	}
	if cfg.Retry.BackoffFactor > 0 {
		rc.BackoffFactor = cfg.Retry.BackoffFactor
	}
	return rc
}

func cmdAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var (
		projectDir  = fs.String("projectdir", ".", "Project directory")
		profileName = fs.String("profile", "dev", "Model profile to use")
		temperature = fs.Float64("temp", 0, "Sampling temperature")
		mode        = fs.String("icl", textutil.ZeroShot, "In-context learning mode (zero-shot or few-shot)")
		sentenceID  = fs.Int64("sentence-id", 0, "Stored sentence ID to analyze and persist")
		override    = fs.Bool("persist-override", false, "Force re-analysis even when a stored result exists")
		pretty      = fs.Bool("pretty", false, "Pretty-print JSON output")
		debug       = fs.Bool("debug", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *debug {
		logx.SetDebug(true, nil)
	}

	application, err := buildApp(*projectDir)
	if err != nil {
		return err
	}

	opts := analysis.Options{
		Profile:     *profileName,
		Temperature: float32(*temperature),
		Mode:        *mode,
		Override:    *override,
	}

	var result *analysis.Result
	if *sentenceID > 0 {
		result, err = application.service.AnalyzeSentence(ctx, *sentenceID, opts)
	} else {
		if fs.NArg() < 1 {
			return fmt.Errorf("analyze requires text or -sentence-id")
		}
		result, err = application.service.AnalyzeText(ctx, fs.Arg(0), opts)
	}
	if err != nil {
		return err
	}

	return printJSON(result, *pretty)
}

func cmdIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	var (
		projectDir = fs.String("projectdir", ".", "Project directory")
		title      = fs.String("title", "", "Document title")
		file       = fs.String("file", "", "Path to a text file to ingest")
		pretty     = fs.Bool("pretty", false, "Pretty-print JSON output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var content string
	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *file, err)
		}
		content = string(data)
	case fs.NArg() >= 1:
		content = fs.Arg(0)
	default:
		return fmt.Errorf("ingest requires -file or text")
	}

	application, err := buildApp(*projectDir)
	if err != nil {
		return err
	}

	result, err := application.service.IngestDocument(ctx, *title, content)
	if err != nil {
		return err
	}

	out := map[string]any{
		"document_id": result.Document.ID,
		"sentences":   len(result.Sentences),
		"duplicate":   result.Duplicate,
	}
	return printJSON(out, *pretty)
}

func cmdAnalyzeDoc(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze-doc", flag.ExitOnError)
	var (
		projectDir  = fs.String("projectdir", ".", "Project directory")
		profileName = fs.String("profile", "dev", "Model profile to use")
		docID       = fs.Int64("doc-id", 0, "Document ID to analyze")
		mode        = fs.String("icl", textutil.ZeroShot, "In-context learning mode")
		override    = fs.Bool("persist-override", false, "Force re-analysis of cached sentences")
		pretty      = fs.Bool("pretty", false, "Pretty-print JSON output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docID <= 0 {
		return fmt.Errorf("analyze-doc requires -doc-id")
	}

	application, err := buildApp(*projectDir)
	if err != nil {
		return err
	}

	summary, err := application.service.AnalyzeDocument(ctx, *docID, analysis.Options{
		Profile:  *profileName,
		Mode:     *mode,
		Override: *override,
	})
	if err != nil {
		return err
	}

	out := map[string]any{
		"document_id": summary.DocumentID,
		"analyzed":    summary.Analyzed,
		"cached":      summary.Cached,
		"failed":      summary.Failed,
	}
	return printJSON(out, *pretty)
}

func cmdMetrics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	var (
		projectDir = fs.String("projectdir", ".", "Project directory")
		operation  = fs.String("operation", analysis.OperationSentiment, "Operation name to query")
		byModel    = fs.Bool("by-model", false, "Break metrics down by model")
		pretty     = fs.Bool("pretty", false, "Pretty-print JSON output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*projectDir)
	if err != nil {
		return err
	}

	queries, err := metrics.NewQueryService(cfg.Metrics.PrometheusURL)
	if err != nil {
		return err
	}

	if *byModel {
		result, err := queries.GetOperationMetricsByModel(ctx, *operation)
		if err != nil {
			return err
		}
		return printJSON(result, *pretty)
	}

	result, err := queries.GetOperationMetrics(ctx, *operation)
	if err != nil {
		return err
	}
	return printJSON(result, *pretty)
}

func printJSON(v any, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
