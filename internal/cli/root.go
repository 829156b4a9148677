package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gumruklab/gtip/internal/cache"
	"github.com/gumruklab/gtip/internal/llm"
	"github.com/gumruklab/gtip/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gtip",
	Short: "GTIP - customs classification matching & precedent toolkit",
	Long: `gtip helps customs consultants classify chemical products.

It keeps a precedent store of finalized classifications, fuzzy-matches
new products against it, checks declared ingredients against the
government tariff list (List V), and can consult a vision-capable LLM
to read safety data sheets.

gtip proposes and ranks; the consultant decides.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gtip v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gtip/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".gtip"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GTIP_*
	viper.SetEnvPrefix("GTIP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file over the defaults.
func loadConfig() model.Config {
	cfg := model.DefaultConfig()
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(&cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config file ignored: %v\n", err)
		}
	}
	cfg.Output.Verbose = verbose
	return cfg
}

// newLogger builds the zap logger the pipelines report through. The
// default level keeps stderr quiet; --verbose opens debug.
func newLogger() *zap.SugaredLogger {
	zapCfg := zap.NewDevelopmentConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// buildProvider creates the configured LLM provider, filling the API
// key from the environment when the config leaves it empty, and wraps
// it with the response cache when caching is enabled.
func buildProvider(cfg model.Config) (llm.Provider, error) {
	llmCfg := llm.ConfigFromModel(cfg.LLM)

	if llmCfg.APIKey == "" {
		switch llmCfg.Provider {
		case "openai":
			llmCfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini", "google":
			llmCfg.APIKey = os.Getenv("GEMINI_API_KEY")
			if llmCfg.APIKey == "" {
				llmCfg.APIKey = os.Getenv("GOOGLE_API_KEY")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && llmCfg.BaseURL == "" {
				llmCfg.BaseURL = baseURL
			}
		}
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil || provider == nil {
		return provider, err
	}

	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		provider = llm.NewCachedProvider(provider, layered, cfg.Cache.DiskTTL)
	}
	return provider, nil
}
