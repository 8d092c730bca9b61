package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/avanishm/jobdigest/internal/digest"
	"github.com/avanishm/jobdigest/internal/logger"
	"github.com/avanishm/jobdigest/internal/pipeline"
	"github.com/avanishm/jobdigest/internal/provider"
	"github.com/avanishm/jobdigest/internal/provider/jsearch"
	"github.com/avanishm/jobdigest/internal/provider/serpapi"
	"github.com/avanishm/jobdigest/internal/scoring"
	"github.com/avanishm/jobdigest/internal/scoring/gemini"
	"github.com/avanishm/jobdigest/internal/secrets"
	"github.com/avanishm/jobdigest/internal/seen"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultRunTimeout  = 10 * time.Minute
	defaultPreviewPath = "/tmp/job-digest-preview.html"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily search, score and digest delivery",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "search and score but write the digest to a file instead of sending")
	runCmd.Flags().Bool("preview", false, "render the digest from built-in sample data, no network")
	runCmd.Flags().String("output", defaultPreviewPath, "digest output path for dry-run and preview modes")
	runCmd.Flags().Duration("timeout", defaultRunTimeout, "run-level timeout; in-flight calls are aborted when it expires")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	log0, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		log0.Fatal("getting a config", zap.Error(err))
	}

	log0.Info("starting jobdigest", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log0.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil || config.Search == nil {
		log0.Fatal("search criteria are required under the search key")
	}

	outputPath, _ := cmd.Flags().GetString("output")

	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		if err := renderPreview(config, outputPath, log0); err != nil {
			log0.Fatal("rendering preview", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(config.Profile) == "" {
		log0.Fatal("candidate profile is required under the profile key to score postings")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	deps, err := buildDeps(ctx, config, dryRun, outputPath, log0)
	if err != nil {
		log0.Fatal("assembling pipeline dependencies", zap.Error(err))
	}

	opts := pipeline.Options{
		Criteria:     config.Search,
		Profile:      config.Profile,
		WindowDays:   config.WindowDays,
		Concurrency:  aiConcurrency(config),
		PersistCache: !dryRun,
	}

	meta, err := pipeline.Run(ctx, opts, *deps)
	if err != nil {
		var deliveryErr *digest.DeliveryError
		switch {
		case errors.Is(err, provider.ErrAllProvidersFailed):
			log0.Fatal("no data sources available", zap.Error(err))
		case errors.As(err, &deliveryErr):
			log0.Fatal("digest delivery failed, seen cache left unchanged", zap.Error(err))
		default:
			log0.Fatal("run failed", zap.String("run_id", meta.RunID), zap.Error(err))
		}
	}
}

func buildDeps(ctx context.Context, config *Config, dryRun bool, outputPath string, log0 *zap.Logger) (*pipeline.Deps, error) {
	primary, fallback, err := buildFetchers(config, log0)
	if err != nil {
		return nil, err
	}

	scorer, err := buildScorer(ctx, config.AI, log0)
	if err != nil {
		return nil, err
	}

	sender, err := buildSender(config, dryRun, outputPath, log0)
	if err != nil {
		return nil, err
	}

	return &pipeline.Deps{
		Primary:  primary,
		Fallback: fallback,
		Scorer:   scorer,
		Sender:   sender,
		Cache:    seen.Load(cacheFile(config), log0),
		Logger:   log0,
	}, nil
}

// buildFetchers wires the configured providers: SerpAPI is primary when its
// key is present, JSearch serves as fallback or takes over entirely.
func buildFetchers(config *Config, log0 *zap.Logger) (primary, fallback provider.Fetcher, err error) {
	var serpKey, rapidKey string

	if config.Providers != nil {
		serpKey, _ = secrets.Load(secrets.Source{
			Name: "serpapi key",
			File: config.Providers.SerpAPIKeyFile,
		})
		rapidKey, _ = secrets.Load(secrets.Source{
			Name: "rapidapi key",
			File: config.Providers.RapidAPIKeyFile,
		})
	}

	switch {
	case serpKey != "" && rapidKey != "":
		return serpapi.New(serpKey, log0), jsearch.New(rapidKey, log0), nil
	case serpKey != "":
		return serpapi.New(serpKey, log0), nil, nil
	case rapidKey != "":
		log0.Warn("serpapi key is not configured, using jsearch as the only provider")
		return jsearch.New(rapidKey, log0), nil, nil
	default:
		return nil, nil, errors.New("no search provider configured: set providers.serpapi-key-file or providers.rapidapi-key-file")
	}
}

func buildScorer(ctx context.Context, cfg *AIConfig, log0 *zap.Logger) (scoring.Scorer, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required under the ai key")
	}

	if p := strings.TrimSpace(strings.ToLower(cfg.Provider)); p != "" && p != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	scorerLogger := log0.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewScorer(generator, scorerLogger, cfg.Gemini.MaxLogLength)
}

// buildSender returns the Resend sender, falling back to a local file when no
// api key is configured so the run still produces a reviewable digest.
func buildSender(config *Config, dryRun bool, outputPath string, log0 *zap.Logger) (digest.Sender, error) {
	if dryRun {
		return digest.NewFileSender(outputPath, log0), nil
	}

	if config.Email == nil {
		return nil, errors.New("email configuration is required under the email key")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "resend api key",
		File: config.Email.APIKeyFile,
	})
	if err != nil {
		log0.Warn("resend api key is not configured, writing the digest to a file instead",
			zap.String("path", outputPath),
			zap.Error(err),
		)
		return digest.NewFileSender(outputPath, log0), nil
	}

	return digest.NewResendSender(apiKey, config.Email.From, config.Email.To, log0), nil
}

func cacheFile(config *Config) string {
	if config.CacheFile != "" {
		return config.CacheFile
	}
	return "data/seen_jobs.json"
}

func aiConcurrency(config *Config) int {
	if config.AI != nil && config.AI.Concurrency > 0 {
		return config.AI.Concurrency
	}
	return scoring.DefaultConcurrency
}
