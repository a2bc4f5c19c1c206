package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/constants"
)

type ctxKey string

const configContextKey ctxKey = "koomy.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	LedgerDriverSQLite   = "sqlite"
	LedgerDriverPostgres = "postgres"

	minSessionSecretLen = 32
)

type Config struct {
	ListenAddr  string `yaml:"listenAddr"  split_words:"true"`
	Environment string `yaml:"environment" envconfig:"APP_ENV"`
	Debug       bool   `yaml:"debug"`

	APIBaseURL string        `yaml:"apiBaseUrl" envconfig:"API_BASE_URL"`
	APITimeout time.Duration `yaml:"apiTimeout" envconfig:"API_TIMEOUT"`

	SessionSecret string        `yaml:"sessionSecret" split_words:"true"`
	CookieName    string        `yaml:"cookieName"    split_words:"true"`
	CookieSecure  bool          `yaml:"cookieSecure"  split_words:"true"`
	SessionTTL    time.Duration `yaml:"sessionTtl"    envconfig:"SESSION_TTL"`

	// Empty RedisAddr keeps caches and sessions in process memory
	RedisAddr     string `yaml:"redisAddr"     split_words:"true"`
	RedisPassword string `yaml:"redisPassword" split_words:"true"`
	RedisDB       int    `yaml:"redisDb"       envconfig:"REDIS_DB"`

	WhiteLabelTTL  time.Duration `yaml:"whiteLabelTtl"  envconfig:"WHITE_LABEL_TTL"`
	QueryCacheTTL  time.Duration `yaml:"queryCacheTtl"  envconfig:"QUERY_CACHE_TTL"`
	UploadMaxBytes int64         `yaml:"uploadMaxBytes" split_words:"true"`

	LedgerDriver string `yaml:"ledgerDriver" split_words:"true"`
	LedgerDSN    string `yaml:"ledgerDsn"    envconfig:"LEDGER_DSN"`

	OrphanAfter           time.Duration `yaml:"orphanAfter"           split_words:"true"`
	OrphanMonitorInterval time.Duration `yaml:"orphanMonitorInterval" split_words:"true"`
	// SessionGaugeInterval is how often the active sessions gauge is recounted
	SessionGaugeInterval  time.Duration `yaml:"sessionGaugeInterval"  split_words:"true"`

	FaviconRules  branding.RuleSet   `yaml:"faviconRules"  split_words:"true"`
	ManifestRules branding.RuleSet   `yaml:"manifestRules" split_words:"true"`
	AssetPaths    branding.AssetPaths `yaml:"assetPaths"   split_words:"true"`
	// StaticDir, when set, is served at the root for the head asset files
	StaticDir string `yaml:"staticDir" split_words:"true"`

	CORSOrigins    []string `yaml:"corsOrigins"    envconfig:"CORS_ORIGINS"`
	LoginRateLimit float64  `yaml:"loginRateLimit" split_words:"true"`
	LoginBurst     int      `yaml:"loginBurst"     split_words:"true"`
}

// Default returns a fresh copy of the built-in configuration
func Default() *Config {
	rv := branding.DefaultResolver()
	return &Config{
		ListenAddr:            ":8080",
		Environment:           "development",
		APIBaseURL:            "https://api.koomy.app",
		APITimeout:            15 * time.Second,
		CookieName:            constants.SessionCookieName,
		SessionTTL:            constants.SessionTTL,
		WhiteLabelTTL:         constants.WhiteLabelStaleAfter,
		QueryCacheTTL:         30 * time.Second,
		UploadMaxBytes:        constants.MaxUploadBytes,
		LedgerDriver:          LedgerDriverSQLite,
		LedgerDSN:             "file:koomy-ledger.db?_busy_timeout=5000",
		OrphanAfter:           time.Hour,
		OrphanMonitorInterval: 10 * time.Minute,
		SessionGaugeInterval:  time.Minute,
		FaviconRules:          rv.FaviconRules,
		ManifestRules:         rv.ManifestRules,
		AssetPaths:            rv.Paths,
		CORSOrigins:           []string{"*"},
		LoginRateLimit:        1,
		LoginBurst:            5,
	}
}

// LoadConfig overlays the YAML file (when given) and then KOOMY_* environment
// variables onto the defaults.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("koomy", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("apiBaseUrl must be set"))
	}
	if len(c.SessionSecret) < minSessionSecretLen {
		errs = append(errs, fmt.Errorf("sessionSecret must be at least %d characters", minSessionSecretLen))
	}
	switch c.LedgerDriver {
	case LedgerDriverSQLite, LedgerDriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger driver %q", c.LedgerDriver))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("uploadMaxBytes must be positive"))
	}
	return errors.Join(errs...)
}

// Resolver builds the tenant resolver from the configured rules
func (c *Config) Resolver() *branding.Resolver {
	return &branding.Resolver{
		FaviconRules:  c.FaviconRules,
		ManifestRules: c.ManifestRules,
		Paths:         c.AssetPaths,
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
