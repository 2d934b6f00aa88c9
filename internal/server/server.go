package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/middleware"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var (
	server     *http.Server
	_logger    *logger_i.Logger
	loggerOnce sync.Once
)

func log() *logger_i.Logger {
	loggerOnce.Do(func() { _logger = logger_i.NewLogger("Server") })
	return _logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// Routes mounts every endpoint on the shared router. mcpHandler may be nil.
func Routes(mcpHandler http.Handler) http.Handler {
	r := utils.NewRouter()

	r.Router.Get("/health", middleware.GetHandler)

	r.Router.Route("/collections", func(c chi.Router) {
		c.Get("/", middleware.ListCollectionsHandler)
		c.Post("/", middleware.CreateCollectionHandler)
		c.Get("/{name}", middleware.GetCollectionHandler)
		c.Delete("/{name}", middleware.DeleteCollectionHandler)
	})

	r.Router.Route("/sessions", func(s chi.Router) {
		s.Post("/", middleware.CreateSessionHandler)
		s.Get("/{id}", middleware.GetSessionHandler)
		s.Delete("/{id}", middleware.DeleteSessionHandler)
		s.Put("/{id}/collection", middleware.BindCollectionHandler)
		s.Delete("/{id}/collection", middleware.UnbindCollectionHandler)
	})

	r.Router.Post("/chat", middleware.ChatHandler)
	r.Router.Get("/status/{id}", middleware.GetStatusHandler)
	r.Router.Post("/ingest", middleware.PostIngestHandler)

	if mcpHandler != nil {
		r.Router.Handle("/mcp", middleware.Handler(mcpHandler))
	}
	return r.Router
}

func CreateServer(listenAddr string, mcpHandler http.Handler) {
	server = &http.Server{
		Addr:              listenAddr,
		Handler:           Routes(mcpHandler),
		ReadHeaderTimeout: config.ReadTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	log().Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log().Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	log().Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			log().Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		log().Info("Gracefully is shutting down")
	case <-ctx.Done():
		log().Info("Force Shut down")
		os.Exit(1)
	}
}
