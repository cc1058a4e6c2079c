package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Env     string
	DryRun  bool
	Markets []instrument.Market
	Slack   SlackConfig
	Fetch   FetchConfig
	Store   StoreConfig
	Log     LogConfig
	Metrics MetricsConfig
	AWS     AWSConfig
}

// SlackConfig holds the alert destination. TokenCiphertext, when set, is a
// base64 KMS ciphertext and takes precedence over Token.
type SlackConfig struct {
	Channel         string
	Token           string
	TokenCiphertext string
	APIURL          string
	// MaxFailures consecutive post failures open the delivery breaker
	// for CoolOff.
	MaxFailures int
	CoolOff     time.Duration
}

// FetchConfig holds exchange HTTP client settings.
type FetchConfig struct {
	Timeout            time.Duration
	MaxRetries         int
	InsecureSkipVerify bool
}

// StoreConfig selects the snapshot backend ("file" or "redis").
type StoreConfig struct {
	Backend string
	Dir     string
	Redis   RedisConfig
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// LogConfig holds logger settings. An empty File logs to stderr.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// MetricsConfig holds the optional Pushgateway target.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// AWSConfig holds KMS client settings.
type AWSConfig struct {
	Region             string
	LocalStackEndpoint string
}

// Load builds the configuration from, in increasing priority: defaults, an
// optional config file, a .env file, environment variables prefixed with
// LISTWATCH_, and command-line args.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("listwatch", pflag.ContinueOnError)
	flags.String("channel", "", "Slack channel receiving alerts")
	flags.Bool("test", false, "dry run: log alerts instead of posting them")
	flags.StringSlice("markets", nil, "markets to poll, in order")
	flags.String("config", "", "optional config file (yaml, toml or json)")
	flags.String("env-file", ".env", "dotenv file loaded into the environment")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	envFile, _ := flags.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix("LISTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("env", "development")
	v.SetDefault("markets", marketNames(instrument.AllMarkets()))

	v.SetDefault("slack.max_failures", 3)
	v.SetDefault("slack.cool_off", 30*time.Second)

	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.insecure_skip_verify", false)

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", ".")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "listwatch:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)

	v.SetDefault("metrics.job", "listwatch")
	v.SetDefault("aws.region", "us-east-1")

	// The bare SLACK_TOKEN variable is honoured for existing deployments.
	_ = v.BindEnv("slack.token", "LISTWATCH_SLACK_TOKEN", "SLACK_TOKEN")

	_ = v.BindPFlag("slack.channel", flags.Lookup("channel"))
	_ = v.BindPFlag("dry_run", flags.Lookup("test"))
	_ = v.BindPFlag("markets", flags.Lookup("markets"))

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("env")
	cfg.DryRun = v.GetBool("dry_run")

	markets, err := parseMarkets(v.GetStringSlice("markets"))
	if err != nil {
		return nil, err
	}
	cfg.Markets = markets

	cfg.Slack = SlackConfig{
		Channel:         v.GetString("slack.channel"),
		Token:           v.GetString("slack.token"),
		TokenCiphertext: v.GetString("slack.token_ciphertext"),
		APIURL:          v.GetString("slack.api_url"),
		MaxFailures:     v.GetInt("slack.max_failures"),
		CoolOff:         v.GetDuration("slack.cool_off"),
	}

	cfg.Fetch = FetchConfig{
		Timeout:            v.GetDuration("fetch.timeout"),
		MaxRetries:         v.GetInt("fetch.max_retries"),
		InsecureSkipVerify: v.GetBool("fetch.insecure_skip_verify"),
	}

	cfg.Store = StoreConfig{
		Backend: v.GetString("store.backend"),
		Dir:     v.GetString("store.dir"),
		Redis: RedisConfig{
			Addr:     v.GetString("store.redis.addr"),
			Password: v.GetString("store.redis.password"),
			DB:       v.GetInt("store.redis.db"),
			Prefix:   v.GetString("store.redis.prefix"),
		},
	}

	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
	}

	cfg.Metrics = MetricsConfig{
		PushgatewayURL: v.GetString("metrics.pushgateway_url"),
		Job:            v.GetString("metrics.job"),
	}

	cfg.AWS = AWSConfig{
		Region:             v.GetString("aws.region"),
		LocalStackEndpoint: v.GetString("aws.localstack_endpoint"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that Load cannot default.
func (c *Config) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("%w: no markets configured", ErrInvalid)
	}
	switch c.Store.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Slack.MaxFailures < 1 {
		return fmt.Errorf("%w: slack.max_failures must be at least 1", ErrInvalid)
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("%w: fetch.max_retries must not be negative", ErrInvalid)
	}
	if c.DryRun {
		return nil
	}
	if c.Slack.Channel == "" {
		return fmt.Errorf("%w: --channel is required unless --test is set", ErrInvalid)
	}
	if c.Slack.Token == "" && c.Slack.TokenCiphertext == "" {
		return fmt.Errorf("%w: SLACK_TOKEN or slack.token_ciphertext is required", ErrInvalid)
	}
	return nil
}

// parseMarkets accepts names split across elements or joined with commas,
// so both flag and environment forms work.
func parseMarkets(raw []string) ([]instrument.Market, error) {
	var markets []instrument.Market
	seen := make(map[instrument.Market]bool)
	for _, elem := range raw {
		for _, name := range strings.Split(elem, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			m, err := instrument.ParseMarket(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			if !seen[m] {
				seen[m] = true
				markets = append(markets, m)
			}
		}
	}
	return markets, nil
}

func marketNames(ms []instrument.Market) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = string(m)
	}
	return names
}
