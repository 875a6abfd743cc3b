package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported storage backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseBolt     = "bolt"
)

type Config struct {
	Port          int
	DatabaseType  string
	DatabaseURL   string
	CORSOrigin    string
	VoteRateLimit float64
	VoteBurst     int
	VoteCacheSize int
	SeedDemo      bool
	LogLevel      string
	ConfigFile    string
}

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Port:          3318,
		DatabaseType:  DatabaseSQLite,
		DatabaseURL:   "quickly-poll.db",
		CORSOrigin:    "*",
		VoteRateLimit: 5,
		VoteBurst:     10,
		VoteCacheSize: 4096,
		LogLevel:      "info",
	}
}

// fileConfig mirrors the YAML config file. Pointers distinguish "absent" from zero.
type fileConfig struct {
	Port     *int `yaml:"port"`
	Database struct {
		Type string `yaml:"type"`
		URL  string `yaml:"url"`
	} `yaml:"database"`
	CORSOrigin *string `yaml:"corsOrigin"`
	Votes      struct {
		RateLimit *float64 `yaml:"rateLimit"`
		Burst     *int     `yaml:"burst"`
		CacheSize *int     `yaml:"cacheSize"`
	} `yaml:"votes"`
	SeedDemo *bool  `yaml:"seedDemo"`
	LogLevel string `yaml:"logLevel"`
}

// ParseFlags builds the Config. Precedence: CLI flags, then environment
// (including a .env file in the working directory), then the YAML config file,
// then defaults.
func ParseFlags(args []string) (Config, error) {
	var flags Config

	fs := flag.NewFlagSet("quickly-poll", flag.ContinueOnError)

	fs.IntVar(&flags.Port, "p", 0, "Server port")
	fs.StringVar(&flags.DatabaseType, "t", "", "Database type (sqlite, postgres or bolt)")
	fs.StringVar(&flags.DatabaseURL, "d", "", "Database URL or file path")
	fs.StringVar(&flags.CORSOrigin, "cors-origin", "", "Allowed CORS origin")
	fs.Float64Var(&flags.VoteRateLimit, "vote-rps", 0, "Votes per second per session (0 disables)")
	fs.IntVar(&flags.VoteBurst, "vote-burst", 0, "Vote burst per session")
	fs.IntVar(&flags.VoteCacheSize, "vote-cache", 0, "Known-voter cache size")
	fs.BoolVar(&flags.SeedDemo, "seed", false, "Create a demo poll when the store is empty")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flags.ConfigFile, "c", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Default()

	cfg.ConfigFile = flags.ConfigFile
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	}
	if cfg.ConfigFile != "" {
		if err := mergeFile(&cfg, cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	// CLI overrides everything
	if set["p"] {
		cfg.Port = flags.Port
	}
	if set["t"] {
		cfg.DatabaseType = flags.DatabaseType
	}
	if set["d"] {
		cfg.DatabaseURL = flags.DatabaseURL
	}
	if set["cors-origin"] {
		cfg.CORSOrigin = flags.CORSOrigin
	}
	if set["vote-rps"] {
		cfg.VoteRateLimit = flags.VoteRateLimit
	}
	if set["vote-burst"] {
		cfg.VoteBurst = flags.VoteBurst
	}
	if set["vote-cache"] {
		cfg.VoteCacheSize = flags.VoteCacheSize
	}
	if set["seed"] {
		cfg.SeedDemo = flags.SeedDemo
	}
	if set["log-level"] {
		cfg.LogLevel = flags.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnv loads path if it exists. Variables already set in the
// environment are left alone.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func mergeFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var parsed fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if parsed.Port != nil {
		cfg.Port = *parsed.Port
	}
	if parsed.Database.Type != "" {
		cfg.DatabaseType = parsed.Database.Type
	}
	if parsed.Database.URL != "" {
		cfg.DatabaseURL = parsed.Database.URL
	}
	if parsed.CORSOrigin != nil {
		cfg.CORSOrigin = *parsed.CORSOrigin
	}
	if parsed.Votes.RateLimit != nil {
		cfg.VoteRateLimit = *parsed.Votes.RateLimit
	}
	if parsed.Votes.Burst != nil {
		cfg.VoteBurst = *parsed.Votes.Burst
	}
	if parsed.Votes.CacheSize != nil {
		cfg.VoteCacheSize = *parsed.Votes.CacheSize
	}
	if parsed.SeedDemo != nil {
		cfg.SeedDemo = *parsed.SeedDemo
	}
	if parsed.LogLevel != "" {
		cfg.LogLevel = parsed.LogLevel
	}
	return nil
}

func applyEnv(cfg *Config) error {
	env := func(key string) string { return strings.TrimSpace(os.Getenv(key)) }

	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := env("DATABASE_TYPE"); v != "" {
		cfg.DatabaseType = v
	}
	if v := env("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v, ok := os.LookupEnv("CORS_ORIGIN"); ok {
		cfg.CORSOrigin = strings.TrimSpace(v)
	}
	if v := env("VOTE_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid VOTE_RATE_LIMIT env variable")
		}
		cfg.VoteRateLimit = rps
	}
	if v := env("VOTE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid VOTE_BURST env variable")
		}
		cfg.VoteBurst = burst
	}
	if v := env("VOTE_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid VOTE_CACHE_SIZE env variable")
		}
		cfg.VoteCacheSize = size
	}
	if v := env("SEED_DEMO"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid SEED_DEMO env variable")
		}
		cfg.SeedDemo = seed
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseBolt:
	default:
		return fmt.Errorf("unsupported database type %q (want sqlite, postgres or bolt)", c.DatabaseType)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.VoteRateLimit < 0 {
		return errors.New("vote rate limit must not be negative")
	}
	if c.VoteBurst < 0 {
		return errors.New("vote burst must not be negative")
	}
	if c.VoteRateLimit > 0 && c.VoteBurst == 0 {
		return errors.New("vote burst must be positive when rate limiting is enabled")
	}
	if c.VoteCacheSize < 0 {
		return errors.New("vote cache size must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
