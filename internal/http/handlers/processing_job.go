package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/services"
)

type ProcessingJobHandler struct {
	jobService services.ProcessingJobService
}

func NewProcessingJobHandler(jobService services.ProcessingJobService) *ProcessingJobHandler {
	return &ProcessingJobHandler{jobService: jobService}
}

func jobPath(c *gin.Context) (projectID, jobID uuid.UUID, ok bool) {
	if projectID, ok = pathUUID(c, "projectId"); !ok {
		return
	}
	jobID, ok = pathUUID(c, "jobId")
	return
}

// POST /api/projects/:projectId/processing-jobs
func (h *ProcessingJobHandler) Create(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req struct {
		DataSourceIDs *[]string `json:"dataSourceIds"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.DataSourceIDs == nil {
		response.RespondError(c, apierr.Validation("dataSourceIds must be an array"))
		return
	}
	ids := make([]uuid.UUID, 0, len(*req.DataSourceIDs))
	for _, raw := range *req.DataSourceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, apierr.Validation("Invalid data source id: %s", raw))
			return
		}
		ids = append(ids, id)
	}
	job, err := h.jobService.Create(c.Request.Context(), rd.OrganisationID, projectID, rd.UserID, ids)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, job)
}

// GET /api/projects/:projectId/processing-jobs?status=
func (h *ProcessingJobHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	filter := types.JobFilter{Status: queryEnum[types.JobStatus](c, "status")}
	jobs, err := h.jobService.List(c.Request.Context(), rd.OrganisationID, projectID, filter)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, jobs)
}

// GET /api/projects/:projectId/processing-jobs/:jobId
func (h *ProcessingJobHandler) Get(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, jobID, ok := jobPath(c)
	if !ok {
		return
	}
	job, err := h.jobService.Get(c.Request.Context(), rd.OrganisationID, projectID, jobID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, job)
}

// GET /api/projects/:projectId/processing-jobs/:jobId/data-sources
func (h *ProcessingJobHandler) ListDataSources(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, jobID, ok := jobPath(c)
	if !ok {
		return
	}
	links, err := h.jobService.ListDataSources(c.Request.Context(), rd.OrganisationID, projectID, jobID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, links)
}

// POST /api/projects/:projectId/processing-jobs/:jobId/retry
func (h *ProcessingJobHandler) Retry(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, jobID, ok := jobPath(c)
	if !ok {
		return
	}
	job, err := h.jobService.Retry(c.Request.Context(), rd.OrganisationID, projectID, jobID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, job)
}

// PATCH /api/projects/:projectId/processing-jobs/:jobId/status
func (h *ProcessingJobHandler) UpdateStatus(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, jobID, ok := jobPath(c)
	if !ok {
		return
	}
	var req services.UpdateJobStatusInput
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobService.UpdateStatus(c.Request.Context(), rd.OrganisationID, projectID, jobID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, job)
}
