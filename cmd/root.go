package cmd

import (
	"errors"
	"log"

	"github.com/avanishm/jobdigest/internal/job"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobdigest"
)

type Config struct {
	Search     *job.SearchCriteria `mapstructure:"search"`
	Profile    string              `mapstructure:"profile"`
	CacheFile  string              `mapstructure:"cache-file"`
	WindowDays int                 `mapstructure:"window-days"`
	Providers  *ProvidersConfig    `mapstructure:"providers"`
	Email      *EmailConfig        `mapstructure:"email"`
	AI         *AIConfig           `mapstructure:"ai"`
}

type ProvidersConfig struct {
	SerpAPIKeyFile  string `mapstructure:"serpapi-key-file"`
	RapidAPIKeyFile string `mapstructure:"rapidapi-key-file"`
}

type EmailConfig struct {
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Concurrency int           `mapstructure:"concurrency"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobdigest searches job boards daily and emails a ranked digest of new senior postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"providers.serpapi-key-file":  "SERPAPI_KEY_FILE",
		"providers.rapidapi-key-file": "RAPIDAPI_KEY_FILE",
		"ai.gemini.api-key-file":      "GEMINI_API_KEY_FILE",
		"email.api-key-file":          "RESEND_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobdigest.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Secrets may live in a local .env during development; missing file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error. A missing file
	// is tolerated here so commands like version work anywhere; commands
	// that need configuration report what is missing themselves.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	// No config file at all still yields a usable empty config.
	if config == nil {
		config = &Config{}
	}

	return config, nil
}
