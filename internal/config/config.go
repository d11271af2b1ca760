package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the soundscape service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Interpreter   InterpreterConfig   `mapstructure:"interpreter"`
	Vision        VisionConfig        `mapstructure:"vision"`
	AudioGen      AudioGenConfig      `mapstructure:"audiogen"`
	Renderer      RendererConfig      `mapstructure:"renderer"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	SyncTimeout           time.Duration `mapstructure:"sync_timeout"`
	StreamMaxDuration     time.Duration `mapstructure:"stream_max_duration"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

// InterpreterConfig drives the chat-completion call that turns a scene into
// sound elements. Model parameters are static configuration, never set by the
// client.
type InterpreterConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type VisionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AudioGenConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	DurationSec float64       `mapstructure:"duration_sec"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RendererConfig struct {
	MaxElements int     `mapstructure:"max_elements"`
	TargetPeak  float64 `mapstructure:"target_peak"`
}

type StorageConfig struct {
	Backend string             `mapstructure:"backend"`
	Local   StorageLocalConfig `mapstructure:"local"`
	S3      StorageS3Config    `mapstructure:"s3"`
}

type StorageLocalConfig struct {
	Directory string `mapstructure:"directory"`
}

type StorageS3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// RedisConfig is optional; with an empty URL the idempotency cache is inert.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("SOUNDSCAPE_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("soundscape")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("SOUNDSCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set and fills defaults that depend on
// other fields.
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Interpreter.APIKey) == "" {
		missing = append(missing, "SOUNDSCAPE_INTERPRETER_API_KEY")
	}
	if strings.TrimSpace(c.AudioGen.Endpoint) == "" {
		missing = append(missing, "SOUNDSCAPE_AUDIOGEN_ENDPOINT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Interpreter.Temperature < 0 || c.Interpreter.Temperature > 2 {
		return fmt.Errorf("interpreter.temperature must be between 0 and 2")
	}
	if c.Interpreter.MaxTokens <= 0 {
		return fmt.Errorf("interpreter.max_tokens must be > 0")
	}
	if c.AudioGen.DurationSec <= 0 {
		return fmt.Errorf("audiogen.duration_sec must be > 0")
	}
	if c.Renderer.MaxElements <= 0 {
		return fmt.Errorf("renderer.max_elements must be > 0")
	}
	if c.Renderer.TargetPeak <= 0 || c.Renderer.TargetPeak > 1 {
		return fmt.Errorf("renderer.target_peak must be between 0 and 1")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis.pool_size must be >= 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "", "local":
		c.Storage.Backend = "local"
		if strings.TrimSpace(c.Storage.Local.Directory) == "" {
			c.Storage.Local.Directory = "./static"
		}
	case "s3":
		c.Storage.Backend = "s3"
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return fmt.Errorf("storage.s3.bucket must be provided for s3 storage")
		}
	default:
		return fmt.Errorf("storage.backend must be local or s3")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8000")
	v.SetDefault("server.body_limit_mb", 20)
	v.SetDefault("server.sync_timeout", "300s")
	v.SetDefault("server.stream_max_duration", "300s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("interpreter.model", "gpt-3.5-turbo")
	v.SetDefault("interpreter.temperature", 0.7)
	v.SetDefault("interpreter.max_tokens", 500)
	v.SetDefault("interpreter.timeout", "120s")

	v.SetDefault("vision.endpoint", "https://api-inference.huggingface.co")
	v.SetDefault("vision.model", "openai/clip-vit-large-patch14")
	v.SetDefault("vision.timeout", "30s")

	v.SetDefault("audiogen.model", "facebook/audiogen-medium")
	v.SetDefault("audiogen.duration_sec", 5)
	v.SetDefault("audiogen.timeout", "120s")

	v.SetDefault("renderer.max_elements", 4)
	v.SetDefault("renderer.target_peak", 0.89)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.directory", "./static")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("cache.ttl", "30m")

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
