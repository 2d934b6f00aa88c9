package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/akolanti/delphi/internal/adapter"
	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/api"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/akolanti/delphi/internal/rag/conversation"
)

// CreateSessionHandler godoc
// @Summary      Start a conversation
// @Description  Creates an empty, unbound session owned by the caller.
// @Tags         Sessions
// @Produce      json
// @Security     BasicAuth
// @Success      201  {object}  api.SessionResponse
// @Router       /sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	session := conversation.NewSession(utils.GetNewUUID(), requester(r).Username, time.Now())
	if err := handlerInstance.service.SessionStore.Create(r.Context(), session); err != nil {
		writeDomainError(w, session.ID, err)
		return
	}
	logRH.WithTrace(r.Context()).Debug("New session", "session", session.ID)
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
}

// GetSessionHandler godoc
// @Summary      Get a session and its history
// @Tags         Sessions
// @Produce      json
// @Security     BasicAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Failure      403  {object}  api.JobResponse
// @Failure      404  {object}  api.JobResponse
// @Router       /sessions/{id} [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	session, err := ownedSession(r, id, requester(r))
	if err != nil {
		writeDomainError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}

// DeleteSessionHandler godoc
// @Summary      End a conversation
// @Tags         Sessions
// @Security     BasicAuth
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  api.JobResponse
// @Router       /sessions/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if _, err := ownedSession(r, id, requester(r)); err != nil {
		writeDomainError(w, id, err)
		return
	}
	if err := handlerInstance.service.SessionStore.Delete(r.Context(), id); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BindCollectionHandler godoc
// @Summary      Select the collection of a session
// @Description  Binds the session to an existing collection and clears its history. Selecting the "-- select a collection --" placeholder unbinds it.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        id       path      string                     true  "Session ID"
// @Param        request  body      api.BindCollectionRequest  true  "Collection name"
// @Success      200      {object}  api.SessionResponse
// @Failure      404      {object}  api.JobResponse  "Unknown session or collection"
// @Router       /sessions/{id}/collection [put]
func BindCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	var req api.BindCollectionRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Collection == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "collection is required")
		return
	}

	session, err := ownedSession(r, id, requester(r))
	if err != nil {
		writeDomainError(w, id, err)
		return
	}

	if req.Collection == collection.UnselectedCollection {
		session = session.Unbind()
	} else {
		if _, err = handlerInstance.collections.Get(r.Context(), req.Collection); err != nil {
			writeDomainError(w, id, err)
			return
		}
		session = session.Bind(req.Collection)
	}
	session.UpdatedAt = time.Now().UTC()

	if err = handlerInstance.service.SessionStore.Save(r.Context(), session); err != nil {
		writeDomainError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}

// UnbindCollectionHandler godoc
// @Summary      Clear the collection of a session
// @Tags         Sessions
// @Produce      json
// @Security     BasicAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Router       /sessions/{id}/collection [delete]
func UnbindCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	session, err := ownedSession(r, id, requester(r))
	if err != nil {
		writeDomainError(w, id, err)
		return
	}
	session = session.Unbind()
	session.UpdatedAt = time.Now().UTC()
	if err = handlerInstance.service.SessionStore.Save(r.Context(), session); err != nil {
		writeDomainError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
}
