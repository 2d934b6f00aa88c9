package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/handlers"
	"github.com/akolanti/delphi/internal/metrics"
	"github.com/akolanti/delphi/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// health stays reachable without credentials for container probes
var GetHandler = WrapPublic(handlers.GetHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)

var ListCollectionsHandler = Wrap(handlers.ListCollectionsHandler)
var CreateCollectionHandler = Wrap(handlers.CreateCollectionHandler)
var GetCollectionHandler = Wrap(handlers.GetCollectionHandler)
var DeleteCollectionHandler = Wrap(handlers.DeleteCollectionHandler)

var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var GetSessionHandler = Wrap(handlers.GetSessionHandler)
var DeleteSessionHandler = Wrap(handlers.DeleteSessionHandler)
var BindCollectionHandler = Wrap(handlers.BindCollectionHandler)
var UnbindCollectionHandler = Wrap(handlers.UnbindCollectionHandler)

// Wrap runs trace injection, rate limiting and Basic authentication before next.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

// WrapPublic is Wrap without authentication.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

func wrap(next http.HandlerFunc, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(utils.GetRoutePattern(r), strconv.Itoa(rec.Status)).Inc() //metrics
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec}, requireAuth)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)
	}
}

// Handler adapts wrap for plain http.Handlers such as the MCP endpoint.
func Handler(next http.Handler) http.Handler {
	return Wrap(next.ServeHTTP)
}

func processRequest(re requestResponseStruct, requireAuth bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = rateLimiter(re)
	if re.badRequest.isBadRequest || !requireAuth {
		return re //stop here if rate limit fails
	}
	return authenticate(re)
}
