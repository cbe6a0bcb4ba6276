package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rmarques/pointblank/pkg/api"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/network"
	"github.com/rmarques/pointblank/pkg/queue"
	"github.com/rmarques/pointblank/pkg/registry"
	"github.com/rmarques/pointblank/pkg/repositories"
	"github.com/rmarques/pointblank/pkg/version"
	"github.com/rmarques/pointblank/pkg/workers"
)

const matchResultQueueSize = 1024

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	pollInterval := flag.Duration("poll-interval", 1*time.Second, "stream liveness poll interval")
	recordInterval := flag.Duration("record-interval", 5*time.Second, "match record flush interval")
	sweepInterval := flag.Duration("sweep-interval", 1*time.Minute, "finished session sweep interval")
	sweepMinAge := flag.Duration("sweep-min-age", 5*time.Minute, "grace period before a finished session is swept")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx := context.Background()

	connStr := os.Getenv("POINTBLANK_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://pointblank.db"
	}

	u, err := url.Parse(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse connection string: %v", err))
	}

	var repository repositories.Repository
	switch u.Scheme {
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, u.Host)
		if err != nil {
			panic(fmt.Sprintf("Failed to create SQLite repository: %v", err))
		}
	case "postgres":
		repository, err = repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			panic(fmt.Sprintf("Failed to create Postgres repository: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unsupported database scheme: %s", u.Scheme))
	}
	defer repository.Close(ctx)

	resultQueue := queue.NewInMemoryQueue(matchResultQueueSize)

	sessionRegistry := registry.NewRegistry(registry.NewRegistryOptions{
		ResultQueue: resultQueue,
	})

	recordMatchWorker := workers.NewRecordMatchWorker(workers.NewRecordMatchWorkerOptions{
		Repository:  repository,
		ResultQueue: resultQueue,
		Interval:    *recordInterval,
	})
	go recordMatchWorker.Start(ctx)

	sweepSessionsWorker := workers.NewSweepSessionsWorker(workers.NewSweepSessionsWorkerOptions{
		Registry: sessionRegistry,
		Interval: *sweepInterval,
		MinAge:   *sweepMinAge,
	})
	go sweepSessionsWorker.Start(ctx)

	streamHandler := network.NewStreamHandler(network.NewStreamHandlerOptions{
		Registry:     sessionRegistry,
		PollInterval: *pollInterval,
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:          *port,
		Registry:      sessionRegistry,
		Repository:    repository,
		StreamHandler: streamHandler,
	})
	apiServer.Start()
}
