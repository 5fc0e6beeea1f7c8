package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/api"
	"github.com/tehtaankatu/tasting/internal/config"
	"github.com/tehtaankatu/tasting/internal/database"
	"github.com/tehtaankatu/tasting/internal/logger"
	"github.com/tehtaankatu/tasting/internal/realtime"
	"github.com/tehtaankatu/tasting/internal/repository"
	"github.com/tehtaankatu/tasting/internal/service"
	"github.com/tehtaankatu/tasting/internal/utils"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to the configuration file")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tasting server %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	log := logger.GetLogger()
	log.Info("starting tasting server",
		zap.String("version", Version),
		zap.String("mode", cfg.Server.Mode))

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	broker := realtime.NewBroker(logger.WithModule("realtime"))
	hub := realtime.NewHub(broker, &cfg.WebSocket, logger.WithModule("realtime"))
	go hub.Run()

	jwtManager := utils.NewJWTManager(cfg.Game.TokenSecret, cfg.Game.TokenExpire)

	svc, err := service.NewGameService(
		repository.NewManager(database.GetDB()),
		broker,
		jwtManager,
		&cfg.Game,
		logger.WithModule("game"),
	)
	if err != nil {
		log.Fatal("failed to initialize game service", zap.Error(err))
	}

	router := api.NewRouter(svc, hub, jwtManager, cfg, logger.WithModule("api"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
