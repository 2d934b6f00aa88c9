// @title           Delphi RAG API
// @version         1.0
// @description     Chat with document collections. Questions and ingestions run as asynchronous jobs.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.basic  BasicAuth
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/delphi/internal/app"
	"github.com/akolanti/delphi/internal/config"
	jobmodel "github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/handlers"
	"github.com/akolanti/delphi/internal/job"
	"github.com/akolanti/delphi/internal/middleware"
	"github.com/akolanti/delphi/internal/rag"
	"github.com/akolanti/delphi/internal/server"
	"github.com/akolanti/delphi/internal/worker"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logger_i.Init("error", "")
		logger_i.NewLogger("main").Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	logger_i.Init(settings.LogLevel, settings.LogFile)
	defer logger_i.Close()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	services, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}

	authenticator, err := services.Authenticator()
	if err != nil {
		logger.Error("Could not load credentials", "file", settings.CredentialsFile, "error", err)
		return
	}
	if authenticator != nil {
		middleware.InitAuth(authenticator, false, settings.AdminUser)
	} else {
		logger.Warn("Authentication is bypassed, every request runs as the admin user", "admin", settings.AdminUser)
		middleware.InitAuth(nil, true, settings.AdminUser)
	}

	mcpServer, err := services.MCPServer()
	if err != nil {
		logger.Error("Could not start the MCP server", "error", err)
		return
	}

	//init job service and job store
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          services.Jobs,
		SessionStore:      services.Sessions,
	})

	ragService := rag.NewService(services.Engine, services.Sessions, services.Pipeline, services.Collections)

	handlers.InitJobHandler(service, services.Collections, config.UploadTempDir)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpServer.Handler())

	<-stopExecution
	logger.Info("Server stopped")
}
