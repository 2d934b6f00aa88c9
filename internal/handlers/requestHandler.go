package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/delphi/internal/adapter"
	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/api"
	"github.com/akolanti/delphi/internal/config"
	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/internal/domain/jobModel"
	"github.com/akolanti/delphi/internal/rag/collection"
	"github.com/akolanti/delphi/internal/rag/ingest"
	"github.com/akolanti/delphi/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id               string
	requester        string
	traceId          string
	sessionId        string
	message          string
	isDocumentIngest bool
	collection       string
	files            []jobModel.IngestFile
}

// GetHandler godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// ChatHandler godoc
// @Summary      Ask a question in a session
// @Description  Queues a question against the collection the session is bound to and returns a job ID to track the answer.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request  body      api.ChatRequest      true  "Question and session id"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Failure      404      {object}  api.JobResponse      "Unknown session"
// @Failure      409      {object}  api.JobResponse      "Session has no collection selected"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request) {
		return
	}
	identity := requester(request)

	var requestData api.ChatRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil ||
		strings.TrimSpace(requestData.Message) == "" || requestData.SessionID == "" {
		logRH.Warn("Bad Chat Request", "error", err, "session", requestData.SessionID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionID, "message and session_id are required")
		return
	}

	session, err := ownedSession(request, requestData.SessionID, identity)
	if err != nil {
		writeDomainError(w, requestData.SessionID, err)
		return
	}
	if !session.Bound() {
		writeDomainError(w, session.ID, commonModels.ErrNotBound)
		return
	}

	submit(w, request, newJobData{
		id:        utils.GetNewUUID(),
		requester: identity.Username,
		traceId:   traceId(request),
		sessionId: session.ID,
		message:   requestData.Message,
	})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of one of the caller's jobs.
// @Tags         Job Status
// @Produce      json
// @Security     BasicAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.Debug("Get Status Request", "URL path", r.URL.Path)

	result, isFound := validateId(r, idString)
	identity := requester(r)
	if !isFound || (result.Requester != identity.Username && !identity.IsAdmin) {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler godoc
// @Summary      Upload documents into a collection
// @Description  Receives one or more files via multipart/form-data, parks them on disk and queues an ingestion job. The collection is created when it does not exist yet. Documents whose name is already in the collection are skipped.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Security     BasicAuth
// @Param        collection  formData  string  true  "Target collection"
// @Param        documents   formData  file    true  "PDF, DOCX, ODT, RTF or TXT files"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Missing fields or file too large"
// @Failure      415  {object}  api.JobResponse "Unsupported document type"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r) {
		return
	}
	identity := requester(r)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	name := r.FormValue("collection")
	if err := collection.ValidateName(name); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, name, err.Error())
		return
	}
	headers := r.MultipartForm.File["documents"]
	if len(headers) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, name, "at least one document is required")
		return
	}
	for _, h := range headers {
		if !ingest.Supported(h.Filename) {
			writeDomainError(w, name, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedType, h.Filename))
			return
		}
	}

	if _, err := handlerInstance.collections.GetOrCreate(r.Context(), name, identity.Username, time.Now()); err != nil {
		writeDomainError(w, name, err)
		return
	}

	files, err := parkUploads(headers)
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Couldn't park uploads", "error", err)
		removeFiles(files)
		WriteErrorResponse(w, http.StatusInternalServerError, name, "Storage error")
		return
	}

	if !submit(w, r, newJobData{
		id:               utils.GetNewUUID(),
		requester:        identity.Username,
		traceId:          traceId(r),
		isDocumentIngest: true,
		collection:       name,
		files:            files,
	}) {
		removeFiles(files)
	}
}

// parkUploads copies every upload into the upload directory. The worker reads
// and removes them.
func parkUploads(headers []*multipart.FileHeader) ([]jobModel.IngestFile, error) {
	targetDir, err := getTargetDirectory()
	if err != nil {
		return nil, err
	}
	files := make([]jobModel.IngestFile, 0, len(headers))
	for _, h := range headers {
		path := filepath.Join(targetDir, utils.GetNewUUID()+filepath.Ext(h.Filename))
		if err = copyUpload(h, path); err != nil {
			return files, err
		}
		files = append(files, jobModel.IngestFile{Name: filepath.Base(h.Filename), Path: path})
	}
	return files, nil
}

func copyUpload(h *multipart.FileHeader, path string) error {
	src, err := h.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}

func removeFiles(files []jobModel.IngestFile) {
	for _, f := range files {
		_ = os.Remove(f.Path)
	}
}

func submit(w http.ResponseWriter, r *http.Request, data newJobData) bool {
	if err := CreateNewJob(r.Context(), data); err != nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, data.id, "Could not queue the job")
		return false
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(data.id))
	return true
}
