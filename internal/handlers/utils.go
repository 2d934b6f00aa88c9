package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/delphi/internal/adapter"
	"github.com/akolanti/delphi/internal/auth"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/rag"
	"github.com/akolanti/delphi/internal/rag/conversation"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// writeDomainError translates err with the same table the workers use.
func writeDomainError(w http.ResponseWriter, id string, err error) {
	code, _ := rag.ErrorCode(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		logRH.Error("Request failed", "id", id, "error", err)
		message = http.StatusText(code)
	}
	WriteErrorResponse(w, code, id, message)
}

func validateId(r *http.Request, id string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(r.Context(), id)
}

func validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		logRH.WithTrace(r.Context()).Warn("context error", "error", err)
		return false
	}
	return true
}

func traceId(r *http.Request) string {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	return trace
}

// requester is the caller the auth middleware put in the context. Routes are
// only mounted behind that middleware.
func requester(r *http.Request) commonModels.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

func ownedSession(r *http.Request, id string, identity commonModels.Identity) (conversation.Session, error) {
	session, err := handlerInstance.service.SessionStore.Get(r.Context(), id)
	if err != nil {
		return conversation.Session{}, err
	}
	if session.Owner != identity.Username {
		return conversation.Session{}, fmt.Errorf("%w: session %q belongs to another user", commonModels.ErrForbidden, id)
	}
	return session, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}

func getTargetDirectory() (string, error) {
	targetDir, err := filepath.Abs(handlerInstance.uploadDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", err
	}
	return targetDir, nil
}
