package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
	"koomy/portal/internal/config"
	"koomy/portal/internal/db"
	"koomy/portal/internal/db/repositories"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
	"koomy/portal/internal/providers"
	"koomy/portal/internal/services"
)

type Repositories struct {
	Sessions common.SessionRepository
	Uploads  *repositories.UploadLedgerRepository
}

type Services struct {
	Cache      common.CacheInterface
	API        *providers.KoomyAPIProvider
	Signer     *common.SessionTokenSigner
	WhiteLabel *services.WhiteLabelService
	Auth       *services.AuthService
	Community  *services.CommunityService
	Admin      *services.AdminService
	Uploads    *services.UploadService
}

type Dependencies struct {
	Config   *config.Config
	Repo     *Repositories
	Services *Services
	Resolver *branding.Resolver
	Metrics  *metrics.MetricsRegistry
	Ledger   *db.Ledger
	Redis    *redis.Client
	UpSince  time.Time
}

// InitDependencies wires the portal from cfg. Redis backs the caches and
// sessions when configured, process memory otherwise.
func InitDependencies(ctx context.Context, cfg *config.Config, m *metrics.MetricsRegistry) (*Dependencies, error) {
	ledger, err := db.OpenLedger(ctx, cfg.LedgerDriver, cfg.LedgerDSN)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		cache       common.CacheInterface
		sessions    common.SessionRepository
	)
	if cfg.RedisAddr != "" {
		redisClient = common.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			ledger.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		cache = common.NewRedisCacheService(redisClient)
		sessions = common.NewSessionService(redisClient, cfg.SessionTTL)
		logging.Info("Using redis for cache and sessions", "addr", cfg.RedisAddr)
	} else {
		cache = common.NewCacheService(cfg.QueryCacheTTL, 10*time.Minute)
		sessions = common.NewMemorySessionService(cfg.SessionTTL)
		logging.Info("Using in-memory cache and sessions")
	}

	return NewDependencies(cfg, m, ledger, redisClient, cache, sessions), nil
}

// NewDependencies wires the services over already opened backends. ledger
// and redisClient may be nil.
func NewDependencies(
	cfg *config.Config,
	m *metrics.MetricsRegistry,
	ledger *db.Ledger,
	redisClient *redis.Client,
	cache common.CacheInterface,
	sessions common.SessionRepository,
) *Dependencies {
	repos := &Repositories{Sessions: sessions}
	if ledger != nil {
		repos.Uploads = repositories.NewUploadLedgerRepository(ledger.ORM, ledger.SQL)
	}

	api := providers.NewKoomyAPIProvider(cfg.APIBaseURL, cfg.APITimeout, cache, cfg.QueryCacheTTL, m)
	api.Debug = cfg.Debug
	logging.Info("Upstream provider ready", "provider", api.GetProviderType(), "base_url", cfg.APIBaseURL)
	signer := common.NewSessionTokenSigner([]byte(cfg.SessionSecret), cache)

	// an untyped nil keeps the upload flow running without a ledger
	var uploadLedger services.UploadLedger
	if repos.Uploads != nil {
		uploadLedger = repos.Uploads
	}

	svcs := &Services{
		Cache:      cache,
		API:        api,
		Signer:     signer,
		WhiteLabel: services.NewWhiteLabelService(api, cache, cfg.WhiteLabelTTL, m),
		Auth:       services.NewAuthService(sessions, signer, api, cfg.SessionTTL),
		Community:  services.NewCommunityService(api),
		Admin:      services.NewAdminService(api),
		Uploads:    services.NewUploadService(api, uploadLedger, cfg.UploadMaxBytes, m),
	}

	return &Dependencies{
		Config:   cfg,
		Repo:     repos,
		Services: svcs,
		Resolver: cfg.Resolver(),
		Metrics:  m,
		Ledger:   ledger,
		Redis:    redisClient,
		UpSince:  time.Now(),
	}
}

// Close releases the ledger and redis connections
func (d *Dependencies) Close() {
	if d.Ledger != nil {
		if err := d.Ledger.Close(); err != nil {
			logging.Warn("Failed to close ledger", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			logging.Warn("Failed to close redis", "error", err)
		}
	}
}
