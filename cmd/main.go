package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/toolmesh.dev/internal/adapter/postgres/executionlog"
	"gitlab.com/toolmesh.dev/internal/adapter/redis/workermirror"
	"gitlab.com/toolmesh.dev/internal/config"
	"gitlab.com/toolmesh.dev/internal/core/ports/secondary"
	"gitlab.com/toolmesh.dev/internal/core/services/dispatch"
	"gitlab.com/toolmesh.dev/internal/core/services/execution"
	"gitlab.com/toolmesh.dev/internal/core/services/pool"
	"gitlab.com/toolmesh.dev/internal/core/services/worker"
	"gitlab.com/toolmesh.dev/internal/domain"
	logger2 "gitlab.com/toolmesh.dev/internal/global/logger"
	http2 "gitlab.com/toolmesh.dev/internal/http"
)

func main() {
	InitReader()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting tool dispatcher service")

	logger := logger2.Logger
	sysCfg := config.NewSystemConfig()

	// SECONDARY PORTS — both are optional; the in-memory pool is
	// authoritative and the dispatcher degrades without them
	var mirror secondary.WorkerMirror
	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unreachable, worker mirroring disabled", "error", err)
		redisClient = nil
	} else {
		mirror = workermirror.NewMirror(redisClient, logger)
	}

	var history secondary.ExecutionHistoryRepository
	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Warn("Postgres unreachable, execution history disabled", "error", err)
	} else {
		history = executionlog.NewRepository(db, logger)
	}

	// SERVICES
	poolSvc, err := pool.NewWorkerPoolService(sysCfg.PoolConfig, logger)
	if err != nil {
		panic(err)
	}
	workerSvc := worker.NewWorkerRegistrationService(poolSvc, mirror, logger)
	runtime := execution.NewRemoteExecutionService(poolSvc, sysCfg.RuntimeConfig, logger)
	dispatchSvc := dispatch.NewDispatchService(runtime, history, logger)
	for _, tool := range sysCfg.RuntimeConfig.Tools {
		dispatchSvc.RegisterTool(domain.ToolSpec{ToolName: tool.Name, Capabilities: tool.Capabilities})
	}

	ctxBg, cancel := context.WithCancel(context.Background())
	if err := workerSvc.RestoreWorkers(ctxBg); err != nil {
		logger.Warn("Failed to restore workers from mirror", "error", err)
	}
	poolSvc.StartHealthMonitor(ctxBg)

	// SERVER
	serviceProvider := http2.NewServiceProvider(workerSvc, dispatchSvc, runtime)
	httpServer := http2.NewServer(serverPort(), "toolDispatcher", *serviceProvider, sysCfg.AuthConfig, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	httpServer.Stop(shutdownCtx)
	poolSvc.StopHealthMonitor()
	runtime.Shutdown()
	cancel()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func serverPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		port = 8082
	}
	return port
}

func InitReader() {
	if len(os.Args) < 2 {
		// no env name supplied; rely on the process environment
		return
	}
	environment := os.Args[1]
	if err := godotenv.Load(environment + ".env"); err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
