package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/U-Jay-git/ResumeRise/internal/server"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "resumerise"
	envPrefix = "RESUMERISE"
)

type Config struct {
	Taxonomy  string        `mapstructure:"taxonomy"`
	Breakdown bool          `mapstructure:"breakdown"`
	Model     *ModelConfig  `mapstructure:"model"`
	Cache     *CacheConfig  `mapstructure:"cache"`
	Server    server.Config `mapstructure:"server"`
}

type ModelConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Artifact string        `mapstructure:"artifact"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis-url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumerise scores how well a resume matches a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumerise.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("taxonomy", "", "path to the skill taxonomy (json or yaml)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("taxonomy", rootCmd.PersistentFlags().Lookup("taxonomy"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every key so that environment overrides apply during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("taxonomy", "skills.json")
	v.SetDefault("breakdown", true)

	v.SetDefault("model.enabled", true)
	v.SetDefault("model.provider", "pipeline")
	v.SetDefault("model.artifact", "resume_matcher_model.json")
	v.SetDefault("model.timeout", 2*time.Second)
	v.SetDefault("model.gemini.api-key", "")
	v.SetDefault("model.gemini.api-key-file", "")
	v.SetDefault("model.gemini.model", "gemini-2.5-flash")
	v.SetDefault("model.gemini.max-retries", 2)
	v.SetDefault("model.gemini.max-log-length", 200)

	v.SetDefault("cache.redis-url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.max-upload-mb", 10)
	v.SetDefault("server.cors-origins", []string{"*"})
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless given explicitly.
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

	return config, nil
}
