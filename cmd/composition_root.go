package cmd

import (
	"context"
	"log/slog"
	"sync"

	api "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/geocache"
	"dispatch/internal/adapters/out/ors"
	"dispatch/internal/adapters/out/pgnotify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/addressrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/taskrepo"
	"dispatch/internal/core/application/geocoding"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/broadcast"
	"dispatch/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot owns the process-wide singletons and builds every component from them.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	metrics    *metrics.Metrics
	hub        *broadcast.Hub
	geocodes   *geocache.MemoryCache
	ors        *ors.Client
	logger     *slog.Logger

	queueOnce sync.Once
	queue     *jobs.DispatchQueue
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	m := metrics.New()

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    m,
		hub:        broadcast.NewHub(0),
		geocodes:   geocache.NewMemoryCache(),
		ors: ors.NewClient(ors.Config{
			BaseURL: config.ORSBaseURL,
		}, m, logger.With("component", "ors")),
		logger: logger,
	}
}

func (c *CompositionRoot) Hub() *broadcast.Hub {
	return c.hub
}

func (c *CompositionRoot) addressDefaults() address.Defaults {
	return address.Defaults{City: c.config.ServiceCity, State: c.config.ServiceState}
}

// defaultInput is the dispatch request queued by the feed listener and the sweep.
func (c *CompositionRoot) defaultInput() task.Input {
	return task.Input{
		APIKey:             c.config.ORSAPIKey,
		PizzeriaAddress:    c.config.PizzeriaAddress,
		CapacityPerCourier: c.config.CapacityPerCourier,
	}
}

func (c *CompositionRoot) CreateAddressResolver() *geocoding.Resolver {
	return geocoding.NewResolver(
		c.geocodes,
		addressrepo.NewGormAddressRepository(c.gormDB, c.addressDefaults()),
		c.ors,
		c.addressDefaults(),
		c.metrics,
		c.logger,
	)
}

func (c *CompositionRoot) CreateDispatchRoutesCommandHandler() (*commands.DispatchRoutesCommandHandler, error) {
	scorer, err := services.NewPriorityScorer(c.config.WaitLimitSeconds)
	if err != nil {
		return nil, err
	}

	resolver := c.CreateAddressResolver()
	orders := orderrepo.NewGormOrderRepository(c.gormDB)
	collector := commands.NewCandidateCollector(
		orders,
		orders,
		addressrepo.NewGormAddressRepository(c.gormDB, c.addressDefaults()),
		resolver,
		scorer,
		c.logger,
	)

	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	writer := commands.NewRouteAssignmentWriter(f, commands.WriterOptions{
		UseAdvisoryLock: c.config.DispatchAdvisoryLock,
		LockKey:         DefaultAdvisoryLockKey,
	}, c.metrics, c.logger)

	return commands.NewDispatchRoutesCommandHandler(
		resolver,
		collector,
		queries.NewCourierAvailability(courierrepo.NewGormCourierRepository(c.gormDB)),
		c.ors,
		writer,
		commands.DispatchOptions{
			ClearScope:         c.config.DispatchClearScope,
			CandidateCapFactor: c.config.DispatchCandidateCap,
			CycleTimeout:       c.config.DispatchCycleTimeout,
		},
		c.metrics,
		c.logger,
	), nil
}

// CreateDispatchQueue returns the single queue shared by the HTTP API and the jobs.
func (c *CompositionRoot) CreateDispatchQueue() (*jobs.DispatchQueue, error) {
	var err error
	c.queueOnce.Do(func() {
		var handler *commands.DispatchRoutesCommandHandler
		handler, err = c.CreateDispatchRoutesCommandHandler()
		if err != nil {
			return
		}
		c.queue = jobs.NewDispatchQueue(
			handler,
			taskrepo.NewGormTaskRepository(c.gormDB),
			jobs.QueueOptions{Workers: c.config.DispatchWorkers, Size: c.config.DispatchQueueSize},
			c.metrics,
			c.logger,
		)
	})
	if err != nil {
		return nil, err
	}
	return c.queue, nil
}

// CreateJobManager builds the worker pool, the sweep and, unless FEED_CHANNEL is
// empty, the change feed listener. Without ORS_API_KEY only HTTP requests dispatch.
func (c *CompositionRoot) CreateJobManager(ctx context.Context) (*jobs.JobManager, error) {
	queue, err := c.CreateDispatchQueue()
	if err != nil {
		return nil, err
	}

	schedule := c.config.DispatchSweepCron
	if c.config.ORSAPIKey == "" {
		c.logger.WarnContext(ctx, "ORS_API_KEY is not set, feed listener and sweep are disabled")
		schedule = ""
	}
	sweep := jobs.NewDispatchSweepJob(queue, c.defaultInput(), schedule, c.logger)

	var listener *jobs.EventListener
	if c.config.FeedChannel != "" && c.config.ORSAPIKey != "" {
		if c.config.FeedInstallTrigger {
			if err = pgnotify.InstallTrigger(ctx, c.gormDB, c.config.FeedChannel); err != nil {
				return nil, err
			}
		}
		feed, err := pgnotify.NewListener(c.config.DSN(), c.config.FeedChannel, c.logger)
		if err != nil {
			return nil, err
		}
		listener = jobs.NewEventListener(
			feed,
			queue,
			c.hub,
			c.defaultInput(),
			c.config.FeedReconnectDelay,
			c.metrics,
			c.logger,
		)
	}

	return jobs.NewJobManager(queue, listener, sweep, c.logger), nil
}

func (c *CompositionRoot) CreateHTTPRouter() (*echo.Echo, error) {
	queue, err := c.CreateDispatchQueue()
	if err != nil {
		return nil, err
	}

	server := api.NewServer(
		queue,
		queries.NewGetTaskStatusQueryHandler(taskrepo.NewGormTaskRepository(c.gormDB)),
		queries.NewGetCourierRoutesQueryHandler(c.gormDB),
		queries.NewGetCouriersQueryHandler(c.gormDB),
		queries.NewGetReadyOrdersQueryHandler(c.gormDB),
		c.hub,
	)
	return api.NewRouter(server, c.metrics.Handler(), c.logger)
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}
