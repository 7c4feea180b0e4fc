package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/services"
)

type ProjectDataSourceHandler struct {
	linkService services.ProjectDataSourceService
}

func NewProjectDataSourceHandler(linkService services.ProjectDataSourceService) *ProjectDataSourceHandler {
	return &ProjectDataSourceHandler{linkService: linkService}
}

// POST /api/projects/:projectId/data-sources
func (h *ProjectDataSourceHandler) Add(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req struct {
		DataSourceID string `json:"dataSourceId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.DataSourceID == "" {
		response.RespondError(c, apierr.Validation("dataSourceId is required"))
		return
	}
	dataSourceID, err := uuid.Parse(req.DataSourceID)
	if err != nil {
		response.RespondError(c, apierr.Validation("dataSourceId must be a valid UUID"))
		return
	}
	link, err := h.linkService.Add(c.Request.Context(), rd.OrganisationID, projectID, dataSourceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, link)
}

// GET /api/projects/:projectId/data-sources
func (h *ProjectDataSourceHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	links, err := h.linkService.List(c.Request.Context(), rd.OrganisationID, projectID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, links)
}

// DELETE /api/projects/:projectId/data-sources/:associationId
func (h *ProjectDataSourceHandler) Remove(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	associationID, ok := pathUUID(c, "associationId")
	if !ok {
		return
	}
	if err := h.linkService.Remove(c.Request.Context(), rd.OrganisationID, projectID, associationID); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}
