package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpin "github.com/mzemanski-eng/claims-ebilling/internal/adapters/in/http"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/engine"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/export"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/locking"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/metrics"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/rbac"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/redislock"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/taxonomy"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/queries"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/jobs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	logger     *zap.Logger
	uowFactory *postgres.GormUnitOfWorkFactory

	registry   *prometheus.Registry
	recorder   *metrics.PrometheusRecorder
	authorizer ports.Authorizer
	locker     ports.InvoiceLocker
	sink       ports.ExportSink
	catalog    *taxonomy.Catalog
	engine     *engine.RuleEngine

	closers []func() error
}

// OpenDatabase connects with the configured driver and, when asked, migrates the schema.
func OpenDatabase(configs Config, log *zap.Logger) (*gorm.DB, error) {
	slow, err := configs.SlowQueryThreshold()
	if err != nil {
		return nil, err
	}
	gormConfig := &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.ParseGormLevel(configs.DBLogLevel), slow),
	}

	var dialector gorm.Dialector
	switch configs.DBDriver {
	case DBDriverSQLite:
		dialector = sqlite.Open(configs.SQLitePath)
	case DBDriverPostgres:
		dialector = gormpostgres.Open(configs.PostgresDSN())
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", configs.DBDriver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", configs.DBDriver, err)
	}

	if configs.AutoMigrate() {
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

func NewCompositionRoot(ctx context.Context, configs Config, gormDB *gorm.DB, log *zap.Logger) (*CompositionRoot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		logger:     log,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		registry:   prometheus.NewRegistry(),
	}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder(c.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	c.recorder = recorder

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("build rbac policy: %w", err)
	}
	c.authorizer = rbac.NewCasbinAuthorizer(enforcer, log)

	c.catalog = taxonomy.NewSeededCatalog()
	if c.engine, err = engine.NewRuleEngine(c.catalog, log); err != nil {
		return nil, fmt.Errorf("build validation engine: %w", err)
	}

	if c.locker, err = c.newLocker(ctx); err != nil {
		return nil, err
	}
	if c.sink, err = c.newExportSink(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *CompositionRoot) newLocker(ctx context.Context) (ports.InvoiceLocker, error) {
	if !c.configs.UseRedis() {
		c.logger.Info("Using in-process invoice locks")
		return locking.NewKeyedMutex(), nil
	}

	db, err := c.configs.RedisDBIndex()
	if err != nil {
		return nil, err
	}
	ttl, err := c.configs.LockTTLDuration()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.configs.RedisAddr,
		Password: c.configs.RedisPassword,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", c.configs.RedisAddr, err)
	}
	c.closers = append(c.closers, client.Close)

	c.logger.Info("Using redis invoice locks", zap.String("addr", c.configs.RedisAddr), zap.Duration("ttl", ttl))
	return redislock.NewLocker(client, ttl, c.logger)
}

func (c *CompositionRoot) newExportSink(ctx context.Context) (ports.ExportSink, error) {
	if c.configs.UseS3() {
		c.logger.Info("Writing payment exports to S3", zap.String("bucket", c.configs.S3Bucket))
		return export.NewS3Sink(ctx, export.S3Config{
			Bucket:          c.configs.S3Bucket,
			Prefix:          c.configs.S3Prefix,
			Region:          c.configs.S3Region,
			Endpoint:        c.configs.S3Endpoint,
			PathStyle:       c.configs.S3UsePathStyle(),
			AccessKeyID:     c.configs.S3AccessKeyID,
			SecretAccessKey: c.configs.S3SecretAccessKey,
		})
	}

	c.logger.Info("Writing payment exports to disk", zap.String("dir", c.configs.ExportDir))
	return export.NewFileSink(afero.NewOsFs(), c.configs.ExportDir)
}

func (c *CompositionRoot) dependencies() commands.Dependencies {
	return commands.Dependencies{
		UoWFactory: FuncUoWFactory(func() commands.UoW {
			return c.uowFactory.Create()
		}),
		Locker:     c.locker,
		Authorizer: c.authorizer,
		Recorder:   c.recorder,
		Clock:      time.Now,
	}
}

func (c *CompositionRoot) CreateCreateInvoiceCommandHandler() commands.CreateInvoiceCommandHandler {
	return commands.NewCreateInvoiceCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateSubmitInvoiceCommandHandler() commands.SubmitInvoiceCommandHandler {
	return commands.NewSubmitInvoiceCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateRunValidationCommandHandler() commands.RunValidationCommandHandler {
	return commands.NewRunValidationCommandHandler(c.dependencies(), c.engine)
}

func (c *CompositionRoot) CreateOpenForReviewCommandHandler() commands.OpenForReviewCommandHandler {
	return commands.NewOpenForReviewCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateApproveInvoiceCommandHandler() commands.ApproveInvoiceCommandHandler {
	return commands.NewApproveInvoiceCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateRequestChangesCommandHandler() commands.RequestChangesCommandHandler {
	return commands.NewRequestChangesCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateDisputeInvoiceCommandHandler() commands.DisputeInvoiceCommandHandler {
	return commands.NewDisputeInvoiceCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateExportInvoiceCommandHandler() commands.ExportInvoiceCommandHandler {
	return commands.NewExportInvoiceCommandHandler(c.dependencies(), c.sink)
}

func (c *CompositionRoot) CreateWithdrawInvoiceCommandHandler() commands.WithdrawInvoiceCommandHandler {
	return commands.NewWithdrawInvoiceCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateRespondToExceptionCommandHandler() commands.RespondToExceptionCommandHandler {
	return commands.NewRespondToExceptionCommandHandler(c.dependencies(), c.engine)
}

func (c *CompositionRoot) CreateResolveExceptionCommandHandler() commands.ResolveExceptionCommandHandler {
	return commands.NewResolveExceptionCommandHandler(c.dependencies())
}

func (c *CompositionRoot) CreateOverrideMappingCommandHandler() commands.OverrideMappingCommandHandler {
	return commands.NewOverrideMappingCommandHandler(c.dependencies(), c.catalog)
}

func (c *CompositionRoot) CreateSetContractTermsCommandHandler() commands.SetContractTermsCommandHandler {
	var f commands.ContractUoWFactory = FuncContractUoWFactory(func() commands.ContractUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetContractTermsCommandHandler(f, c.authorizer, time.Now)
}

func (c *CompositionRoot) CreateGetInvoiceQueryHandler() queries.GetInvoiceQueryHandler {
	return queries.NewGetInvoiceQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListInvoicesQueryHandler() queries.ListInvoicesQueryHandler {
	return queries.NewListInvoicesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListLinesQueryHandler() queries.ListLinesQueryHandler {
	return queries.NewListLinesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListExceptionsQueryHandler() queries.ListExceptionsQueryHandler {
	return queries.NewListExceptionsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListAuditEventsQueryHandler() queries.ListAuditEventsQueryHandler {
	return queries.NewListAuditEventsQueryHandler(c.gormDB)
}

// NewHTTPServer wires every use case behind the echo router.
func (c *CompositionRoot) NewHTTPServer() (*echo.Echo, error) {
	server := httpin.NewServer(
		httpin.CommandHandlers{
			CreateInvoice:      c.CreateCreateInvoiceCommandHandler(),
			SubmitInvoice:      c.CreateSubmitInvoiceCommandHandler(),
			RunValidation:      c.CreateRunValidationCommandHandler(),
			OpenForReview:      c.CreateOpenForReviewCommandHandler(),
			ApproveInvoice:     c.CreateApproveInvoiceCommandHandler(),
			RequestChanges:     c.CreateRequestChangesCommandHandler(),
			DisputeInvoice:     c.CreateDisputeInvoiceCommandHandler(),
			ExportInvoice:      c.CreateExportInvoiceCommandHandler(),
			WithdrawInvoice:    c.CreateWithdrawInvoiceCommandHandler(),
			RespondToException: c.CreateRespondToExceptionCommandHandler(),
			ResolveException:   c.CreateResolveExceptionCommandHandler(),
			OverrideMapping:    c.CreateOverrideMappingCommandHandler(),
			SetContractTerms:   c.CreateSetContractTermsCommandHandler(),
		},
		httpin.QueryHandlers{
			GetInvoice:      c.CreateGetInvoiceQueryHandler(),
			ListInvoices:    c.CreateListInvoicesQueryHandler(),
			ListLines:       c.CreateListLinesQueryHandler(),
			ListExceptions:  c.CreateListExceptionsQueryHandler(),
			ListAuditEvents: c.CreateListAuditEventsQueryHandler(),
		},
		c.catalog,
		c.logger,
	)

	return httpin.NewEcho(server, c.logger, c.MetricsHandler())
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// NewJobManager schedules the validation retry against the same pool and lock.
func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.uowFactory.Create().InvoiceRepository(),
		c.CreateRunValidationCommandHandler(),
		c.configs.ValidationRetryCron,
		c.logger,
	)
}

// Close releases connections opened by the root. The database is closed last.
func (c *CompositionRoot) Close() error {
	var errList []error
	for _, closeFn := range c.closers {
		errList = append(errList, closeFn())
	}
	if sqlDB, err := c.gormDB.DB(); err == nil {
		errList = append(errList, sqlDB.Close())
	}
	return errors.Join(errList...)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncContractUoWFactory func() commands.ContractUoW

func (f FuncContractUoWFactory) Create() commands.ContractUoW {
	return f()
}
