package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/services"
)

type DatasetHandler struct {
	log            *logger.Logger
	datasetService services.DatasetService
}

func NewDatasetHandler(log *logger.Logger, datasetService services.DatasetService) *DatasetHandler {
	return &DatasetHandler{log: log.With("handler", "DatasetHandler"), datasetService: datasetService}
}

func datasetPath(c *gin.Context) (projectID, datasetID uuid.UUID, ok bool) {
	if projectID, ok = pathUUID(c, "projectId"); !ok {
		return
	}
	datasetID, ok = pathUUID(c, "datasetId")
	return
}

// GET /api/projects/:projectId/datasets
func (h *DatasetHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	datasets, err := h.datasetService.List(c.Request.Context(), rd.OrganisationID, projectID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, datasets)
}

// POST /api/projects/:projectId/datasets
func (h *DatasetHandler) Record(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req services.RecordDatasetInput
	if !bindJSON(c, &req) {
		return
	}
	dataset, err := h.datasetService.Record(c.Request.Context(), rd.OrganisationID, projectID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, dataset)
}

// GET /api/projects/:projectId/datasets/:datasetId
func (h *DatasetHandler) Get(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, datasetID, ok := datasetPath(c)
	if !ok {
		return
	}
	dataset, err := h.datasetService.Get(c.Request.Context(), rd.OrganisationID, projectID, datasetID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, dataset)
}

// GET /api/projects/:projectId/datasets/:datasetId/download?format=
func (h *DatasetHandler) Download(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, datasetID, ok := datasetPath(c)
	if !ok {
		return
	}
	dl, err := h.datasetService.Download(c.Request.Context(), rd.OrganisationID, projectID, datasetID, c.Query("format"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		// The status line is already sent.
		h.log.Warn("Dataset download interrupted", "dataset_id", datasetID, "error", err)
	}
}

// DELETE /api/projects/:projectId/datasets/:datasetId
func (h *DatasetHandler) Delete(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, datasetID, ok := datasetPath(c)
	if !ok {
		return
	}
	if err := h.datasetService.Delete(c.Request.Context(), rd.OrganisationID, projectID, datasetID); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}
