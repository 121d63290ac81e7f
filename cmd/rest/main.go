package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chat-archive/internal/bootstrap"
	"chat-archive/internal/config"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/server"
	"chat-archive/internal/tracer"
	"chat-archive/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.JSONLogs(), cfg.App.LogLevel)
	defer sysLogger.Sync()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	sysLogger.Info("main", "database.connecting", map[string]interface{}{"dsn": database.MaskDSN(cfg.Database.Connection)})
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{
		SQLEcho:      cfg.Database.SQLEcho,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		sysLogger.Error("main", "database.connect_failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ErasureAuditService.Consume(ctx); err != nil {
		sysLogger.Error("main", "erasure_audit.consume_failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// 6. Run Server
	srv := server.New(cfg, container, sysLogger)
	go func() {
		<-ctx.Done()
		sysLogger.Info("main", "server.shutting_down", nil)
		_ = srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		sysLogger.Error("main", "server.stopped", map[string]interface{}{"error": err.Error()})
	}
}
