package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "vacuum_bridge/docs"
	"vacuum_bridge/internal/capability/sim"
	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/handlers"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/repository"
	"vacuum_bridge/internal/repository/db"
	"vacuum_bridge/internal/server"
	"vacuum_bridge/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	simCredential   = "simulator"
)

// @title                       Vacuum Bridge API
// @version                     1.0
// @description                 Alarm-driven robot vacuum fleet control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("config", "configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level)

	journalDB, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := journalDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	if !cfg.Simulation.Enabled {
		// Real vendor adapters are provided by the deployment; none ship in-tree.
		log.Fatalw("no vendor adapters available; set simulation.enabled=true")
	}
	world := sim.New(cfg.Simulation, log)
	fillSimCredentials(&cfg)

	services := service.NewService(service.Deps{
		Repos:      repository.NewRepository(journalDB),
		Alarm:      world.AlarmClient(),
		Cloud:      world.CloudClient(),
		Dialer:     world.Dialer(),
		Prober:     service.NewICMPProber(cfg.Probe.Timeout, cfg.Probe.Count, log),
		Simulation: world,
		Config:     cfg,
		Log:        log,
	})
	apiHandler := handlers.NewHandler(services, log, cfg.RateLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go world.Run(ctx, cfg.Simulation.Tick)
	go services.Watcher.Run(ctx)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, services, log)
}

func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	log.Infow("journal_db_open", "path", path)
	return db.InitDB(path)
}

// fillSimCredentials lets the simulator run with an empty config.
func fillSimCredentials(cfg *config.Config) {
	if cfg.Alarm.Username == "" || cfg.Alarm.Password == "" {
		cfg.Alarm.Username, cfg.Alarm.Password = simCredential, simCredential
	}
	if cfg.Xiaomi.Username == "" || cfg.Xiaomi.Password == "" {
		cfg.Xiaomi.Username, cfg.Xiaomi.Password = simCredential, simCredential
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the watcher and simulator, then the completion monitors
	cancel()
	services.Monitoring.Shutdown()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
