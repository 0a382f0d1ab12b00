package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/openai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/storage"
)

const (
	app = "interviewer"
)

type Config struct {
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Storage   *StorageConfig   `mapstructure:"storage"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
	Retry    *RetryConfig  `mapstructure:"retry"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	BaseURL      string  `mapstructure:"base-url"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max-tokens"`
	TopP         float64 `mapstructure:"top-p"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	BaseDelay   time.Duration `mapstructure:"base-delay"`
}

type InterviewConfig struct {
	MaxQuestions     int `mapstructure:"max-questions"`
	InitialQuestions int `mapstructure:"initial-questions"`
	AdaptiveBatch    int `mapstructure:"adaptive-batch"`
}

type StorageConfig struct {
	ResultsDir string `mapstructure:"results-dir"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interviewer runs an adaptive AI interview based on a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
		"storage.results-dir":    "INTERVIEWER_RESULTS_DIR",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("results-dir", "", "directory for interview results (default is "+storage.DefaultDir+")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("storage.results-dir", rootCmd.PersistentFlags().Lookup("results-dir"))
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max-output-tokens", 1024)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.openai.base-url", openai.DefaultBaseURL)
	viper.SetDefault("ai.openai.temperature", 0.7)
	viper.SetDefault("ai.openai.max-tokens", 1024)
	viper.SetDefault("ai.openai.top-p", 0.9)
	viper.SetDefault("ai.openai.max-log-length", 200)
	viper.SetDefault("ai.retry.max-attempts", ai.DefaultMaxAttempts)
	viper.SetDefault("ai.retry.base-delay", ai.DefaultBaseDelay)
	viper.SetDefault("interview.max-questions", interview.DefaultBudget)
	viper.SetDefault("interview.initial-questions", interview.DefaultInitialCount)
	viper.SetDefault("interview.adaptive-batch", interview.DefaultBatchSize)
	viper.SetDefault("storage.results-dir", storage.DefaultDir)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit --config must exist; the default file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
