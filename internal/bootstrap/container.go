package bootstrap

import (
	"context"

	"chat-archive/internal/config"
	"chat-archive/internal/controller"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/repository/unitofwork"
	"chat-archive/internal/service"
	"chat-archive/pkg/database"
	"chat-archive/pkg/events"
	pktNats "chat-archive/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatArchiveController controller.IChatArchiveController

	// Services
	ChatArchiveService service.IChatArchiveService

	// Background Services (Exposed for main.go to run)
	ErasureAuditService service.IErasureAuditService

	// HealthCheck probes the database with SELECT 1.
	HealthCheck func(ctx context.Context) error

	closers []func()
}

// NewContainer wires the archive against an open database. NATS is optional:
// an empty NATS_URL, or a failed connection, leaves domain events disabled.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db, sysLogger)
	auditLogger := logger.NewIsolatedLogger(cfg.App.ErasureAuditLogPath)
	c.closers = append(c.closers, func() { _ = auditLogger.Sync() })

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventBus events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		switch {
		case natsPub == nil:
			sysLogger.Warn("bootstrap", "nats.unavailable", map[string]interface{}{"error": err.Error()})
		default:
			if err != nil {
				sysLogger.Warn("bootstrap", "nats.stream_unavailable", map[string]interface{}{"error": err.Error()})
			}
			eventBus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	} else {
		sysLogger.Info("bootstrap", "nats.disabled", nil)
	}

	// 3. Services
	auditPublisher := service.NewPublisherService(cfg.Keys.ErasureAuditTopic, pubSub)
	c.ErasureAuditService = service.NewErasureAuditService(pubSub, cfg.Keys.ErasureAuditTopic, auditLogger, sysLogger)
	c.ChatArchiveService = service.NewChatArchiveService(
		uowFactory,
		service.NewArchiveEventPublisher(eventBus, sysLogger, cfg.App.NatsPublishTimeout),
		auditPublisher,
		sysLogger,
	)

	// 4. Controllers
	c.ChatArchiveController = controller.NewChatArchiveController(c.ChatArchiveService)

	c.HealthCheck = func(ctx context.Context) error {
		return database.Ping(db.WithContext(ctx))
	}

	return c
}

// Close releases the bus, the NATS connection and flushes the audit log,
// in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
