package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/SJJP-F-2025/requests-service/internal/cache"
	"github.com/SJJP-F-2025/requests-service/internal/config"
	"github.com/SJJP-F-2025/requests-service/internal/datasync"
	"github.com/SJJP-F-2025/requests-service/internal/events"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// serviceManager wires every service on top of the shared local store,
// optional remote store, and optional Redis. A nil remote store puts the
// whole portal in local-only mode; every service degrades individually.
type serviceManager struct {
	local     *store.JSONStore
	publisher events.EventPublisher
	logger    *slog.Logger

	auth      AuthService
	requests  RequestService
	schools   SchoolService
	users     UserService
	materials MaterialService
	stock     StockService
	sync      SyncService
	export    ExportService
}

func NewServiceManager(
	local *store.JSONStore,
	rs remote.Store,
	redisClient *redis.Client,
	publisher events.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) ServiceManager {
	v := validator.New()
	sessionCache := cache.NewCacheHelper(redisClient, "requests-service:")

	var engine *datasync.Engine
	if rs != nil {
		engine = datasync.NewEngine(local, rs, logger)
	}

	return &serviceManager{
		local:     local,
		publisher: publisher,
		logger:    logger,
		auth:      NewAuthService(local, sessionCache, cfg.SessionTTL, logger),
		requests:  NewRequestService(local, rs, v, publisher, logger),
		schools:   NewSchoolService(local, rs, logger),
		users:     NewUserService(local, rs, logger),
		materials: NewMaterialService(local, rs, logger),
		stock:     NewStockService(local, logger),
		sync:      NewSyncService(engine, publisher, logger),
		export:    NewExportService(local, logger),
	}
}

func (m *serviceManager) Auth() AuthService          { return m.auth }
func (m *serviceManager) Requests() RequestService   { return m.requests }
func (m *serviceManager) Schools() SchoolService     { return m.schools }
func (m *serviceManager) Users() UserService         { return m.users }
func (m *serviceManager) Materials() MaterialService { return m.materials }
func (m *serviceManager) Stock() StockService        { return m.stock }
func (m *serviceManager) Sync() SyncService          { return m.sync }
func (m *serviceManager) Export() ExportService      { return m.export }

// Initialize prepares the local store: collection files with the default
// admin seed, plus the one-off legacy coaches migration.
func (m *serviceManager) Initialize(ctx context.Context) error {
	if err := m.local.Bootstrap(); err != nil {
		return fmt.Errorf("store bootstrap failed: %w", err)
	}
	m.local.MigrateLegacyCoaches()
	m.logger.Info("services initialized")
	return nil
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			return fmt.Errorf("event publisher close failed: %w", err)
		}
	}
	m.logger.Info("services shut down")
	return nil
}
