// Command castield is the back-office platform daemon. It serves the
// /api/v1 tenant surface and the /api/admin operator surface over a bolt
// kv store and a sqlite side store.
package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/aimodel"
	"github.com/Edgame2/castiel/audit"
	"github.com/Edgame2/castiel/authorization"
	"github.com/Edgame2/castiel/bolt"
	"github.com/Edgame2/castiel/cache"
	"github.com/Edgame2/castiel/document"
	"github.com/Edgame2/castiel/http"
	"github.com/Edgame2/castiel/insight"
	"github.com/Edgame2/castiel/kit/cli"
	"github.com/Edgame2/castiel/kit/prom"
	"github.com/Edgame2/castiel/logger"
	"github.com/Edgame2/castiel/quota"
	"github.com/Edgame2/castiel/secret"
	"github.com/Edgame2/castiel/shard"
	"github.com/Edgame2/castiel/sqlite"
	"github.com/Edgame2/castiel/sqlite/migrations"
	"github.com/Edgame2/castiel/tenant"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type config struct {
	httpBindAddress string
	boltPath        string
	sqlitePath      string
	redisURL        string
	logLevel        string
	jwtSigningKey   string
	bootstrapToken  string
	auditRetention  time.Duration
	auditInterval   time.Duration
	cacheTTL        time.Duration
}

func main() {
	c := config{}

	cmd, err := cli.NewCommand(viper.New(), &cli.Program{
		Name: "castield",
		Run:  func() error { return run(&c) },
		Opts: []cli.Opt{
			cli.NewOpt(&c.httpBindAddress, "http-bind-address", ":8086", "bind address for the http api"),
			cli.NewOpt(&c.boltPath, "bolt-path", "castield.bolt", "path to the bolt database"),
			cli.NewOpt(&c.sqlitePath, "sqlite-path", "castield.sqlite", "path to the sqlite database"),
			cli.NewOpt(&c.redisURL, "redis-url", "", "redis url for the shard cache, empty disables caching"),
			cli.NewOpt(&c.logLevel, "log-level", "info", "supported log levels are debug, info, warn and error"),
			cli.NewOpt(&c.jwtSigningKey, "jwt-signing-key", "", "hmac key accepted for operator jwts, empty disables them"),
			cli.NewOpt(&c.bootstrapToken, "bootstrap-token", "", "operator api token ensured at startup"),
			cli.NewOpt(&c.auditRetention, "audit-retention", audit.DefaultRetention, "how long audit entries are kept"),
			cli.NewOpt(&c.auditInterval, "audit-sweep-interval", audit.DefaultSweepInterval, "how often the audit retention sweeper runs"),
			cli.NewOpt(&c.cacheTTL, "cache-ttl", cache.DefaultTTL, "ttl of cached shard reads"),
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *config) error {
	logConf := logger.NewConfig()
	if err := logConf.Level.Set(c.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	log, err := logConf.New(os.Stdout)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prom.NewRegistry(log.With(zap.String("service", "prom_registry")))

	// Stores.
	kvStore := bolt.NewKVStore(c.boltPath)
	kvStore.WithLogger(log.With(zap.String("service", "bolt")))
	if err := kvStore.Open(ctx); err != nil {
		return err
	}
	defer kvStore.Close()

	sqlStore, err := sqlite.NewSqlStore(c.sqlitePath, log.With(zap.String("service", "sqlite")))
	if err != nil {
		return err
	}
	defer sqlStore.Close()

	if err := sqlite.NewMigrator(sqlStore, log.With(zap.String("service", "sqlite_migrator"))).Up(ctx, migrations.All); err != nil {
		return err
	}

	// Tenancy.
	tenantSvc := tenant.NewService(tenant.NewStore(kvStore))
	tenantService := tenant.NewTenantMetrics(reg, tenant.NewTenantLogger(log.With(zap.String("service", "tenant")), tenantSvc))

	// Tokens.
	authSvc := authorization.NewService(authorization.NewStore(kvStore))
	authService := authorization.NewAuthMetrics(reg, authorization.NewAuthLogger(log.With(zap.String("service", "authorization")), authSvc))
	if c.bootstrapToken != "" {
		if err := ensureBootstrapToken(ctx, authSvc, c.bootstrapToken); err != nil {
			return err
		}
	}

	// Audit.
	auditSvc := audit.NewService(log.With(zap.String("service", "audit")), sqlStore)
	sweeper := audit.NewSweeper(log.With(zap.String("service", "audit_sweeper")), auditSvc,
		audit.WithRetention(c.auditRetention),
		audit.WithSweepInterval(c.auditInterval),
	)
	sweeper.Open(ctx)
	defer sweeper.Close()

	// Shards.
	shardLog := log.With(zap.String("service", "shard"))
	shardSvc := shard.NewService(shard.NewStore(kvStore))
	var shardService interface {
		castiel.ShardService
		castiel.ShardLinkingService
	} = shard.NewShardMetrics(reg, shard.NewShardLogger(shardLog, shardSvc))
	shardService = audit.NewShardService(shardLog, auditSvc, shardService)

	var subscriber *cache.Subscriber
	if c.redisURL != "" {
		redisOpts, err := redis.ParseURL(c.redisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()

		cacheLog := log.With(zap.String("service", "shard_cache"))
		shardService = cache.NewShardCache(cacheLog, client, shardService, c.cacheTTL)

		subscriber = cache.NewSubscriber(cacheLog, client)
		if err := subscriber.Open(ctx); err != nil {
			return err
		}
		defer subscriber.Close()
	}
	shardService = shard.NewAuthedService(shardService, tenantSvc)

	// Documents.
	documentSvc := document.NewService(document.NewStore(kvStore), shardService)
	documentService := audit.NewDocumentService(log.With(zap.String("service", "document")), auditSvc,
		document.NewDocumentMetrics(reg, document.NewDocumentLogger(log.With(zap.String("service", "document")), documentSvc)))

	// Models and scoring.
	modelSvc := aimodel.NewService(aimodel.NewStore(kvStore))
	modelService := aimodel.NewModelMetrics(reg, aimodel.NewModelLogger(log.With(zap.String("service", "aimodel")), modelSvc))

	secretSvc := secret.NewService(secret.NewStore(kvStore))
	secretService := secret.NewSecretMetrics(reg, secretSvc)

	scoringService := aimodel.NewScoringMetrics(reg,
		aimodel.NewScoringClient(log.With(zap.String("service", "scoring")), modelService, secretService))

	// Quotas and insights.
	quotaSvc := quota.NewService(log.With(zap.String("service", "quota")), sqlStore, modelService, scoringService)
	quotaService := quota.NewQuotaMetrics(reg, quota.NewQuotaLogger(log.With(zap.String("service", "quota")), quotaSvc))

	insightSvc := insight.NewService(log.With(zap.String("service", "insight")), sqlStore, shardService)
	insightService := insight.NewInsightMetrics(reg, insight.NewInsightLogger(log.With(zap.String("service", "insight")), insightSvc))

	contextService := shard.NewContextService(shardService, documentService, insightService)

	handler := http.NewPlatformHandler(&http.APIBackend{
		Logger: log.With(zap.String("service", "http")),

		TenantService:              tenantService,
		UserService:                tenantSvc,
		PasswordsService:           tenantSvc,
		RoleService:                tenantSvc,
		UserResourceMappingService: tenantSvc,

		ShardService:           shardService,
		ContextAssemblyService: contextService,
		ShardTypeService:       shardSvc,

		DocumentService: documentService,
		AuditService:    auditSvc,
		QuotaService:    quotaService,
		InsightService:  insightService,
		AIModelService:  modelService,
		ScoringService:  scoringService,
		SecretService:   secretService,

		AuthorizationService: authService,
	}, reg, []byte(c.jwtSigningKey))

	srv := &nethttp.Server{
		Addr:    c.httpBindAddress,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("transport", "http"), zap.String("addr", c.httpBindAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nethttp.ErrServerClosed {
			return nil
		}
		return err
	}
}

// ensureBootstrapToken makes the configured operator token usable. An
// existing authorization with the token is left untouched.
func ensureBootstrapToken(ctx context.Context, svc castiel.AuthorizationService, token string) error {
	_, err := svc.FindAuthorizationByToken(ctx, token)
	if err == nil {
		return nil
	}
	if castiel.ErrorCode(err) != castiel.ENotFound {
		return err
	}

	return svc.CreateAuthorization(ctx, &castiel.Authorization{
		Token:       token,
		Status:      castiel.Active,
		Description: "bootstrap operator token",
		Permissions: castiel.OperPermissions(),
	})
}
