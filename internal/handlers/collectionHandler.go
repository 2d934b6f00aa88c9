package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/akolanti/delphi/internal/adapter"
	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/api"
	"github.com/akolanti/delphi/internal/rag/collection"
)

// ListCollectionsHandler godoc
// @Summary      List collections
// @Tags         Collections
// @Produce      json
// @Security     BasicAuth
// @Param        selection  query     bool  false  "Prepend the '-- select a collection --' placeholder"
// @Success      200  {object}  api.CollectionListResponse
// @Router       /collections [get]
func ListCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	list := handlerInstance.collections.List
	if selection, _ := strconv.ParseBool(r.URL.Query().Get("selection")); selection {
		list = handlerInstance.collections.ListForSelection
	}
	names, err := list(r.Context())
	if err != nil {
		writeDomainError(w, "", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJsonResponse(w, http.StatusOK, api.CollectionListResponse{Collections: names})
}

// CreateCollectionHandler godoc
// @Summary      Create a collection
// @Description  The caller becomes the owner of the new collection.
// @Tags         Collections
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request  body      api.CreateCollectionRequest  true  "Collection name"
// @Success      201      {object}  api.CollectionResponse
// @Failure      400      {object}  api.JobResponse  "Invalid name"
// @Failure      409      {object}  api.JobResponse  "Name already taken"
// @Router       /collections [post]
func CreateCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	var req api.CreateCollectionRequest
	defer closeBody(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if err := collection.ValidateName(req.Name); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, req.Name, err.Error())
		return
	}

	info, err := handlerInstance.collections.Create(r.Context(), req.Name, requester(r).Username, time.Now())
	if err != nil {
		writeDomainError(w, req.Name, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToCollectionResponse(info))
}

// GetCollectionHandler godoc
// @Summary      Get collection metadata
// @Tags         Collections
// @Produce      json
// @Security     BasicAuth
// @Param        name  path      string  true  "Collection name"
// @Success      200   {object}  api.CollectionResponse
// @Failure      404   {object}  api.JobResponse
// @Router       /collections/{name} [get]
func GetCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	name := utils.GetChiURLParam(r, "name")
	info, err := handlerInstance.collections.Get(r.Context(), name)
	if err != nil {
		writeDomainError(w, name, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToCollectionResponse(info))
}

// DeleteCollectionHandler godoc
// @Summary      Delete a collection
// @Description  Only the owner or the admin may delete. Removes the vector index, the metadata and the cached documents.
// @Tags         Collections
// @Security     BasicAuth
// @Param        name  path  string  true  "Collection name"
// @Success      204
// @Failure      403   {object}  api.JobResponse
// @Failure      404   {object}  api.JobResponse
// @Router       /collections/{name} [delete]
func DeleteCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	name := utils.GetChiURLParam(r, "name")
	if err := handlerInstance.collections.Delete(r.Context(), name, requester(r)); err != nil {
		writeDomainError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
