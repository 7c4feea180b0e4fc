package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	var req services.CreateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), rd.OrganisationID, rd.UserID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, project)
}

// GET /api/projects?status=&orderBy=
func (h *ProjectHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	filter := types.ProjectFilter{
		Status:  queryEnum[types.ProjectStatus](c, "status"),
		OrderBy: c.Query("orderBy"),
	}
	projects, err := h.projectService.List(c.Request.Context(), rd.OrganisationID, filter)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, projects)
}

// GET /api/projects/:projectId
func (h *ProjectHandler) Get(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	project, err := h.projectService.Get(c.Request.Context(), rd.OrganisationID, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, project)
}

// GET /api/projects/:projectId/overview
func (h *ProjectHandler) Overview(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	overview, err := h.projectService.Overview(c.Request.Context(), rd.OrganisationID, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, overview)
}

// PATCH /api/projects/:projectId
func (h *ProjectHandler) Update(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req services.UpdateProjectInput
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projectService.Update(c.Request.Context(), rd.OrganisationID, id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, project)
}

// DELETE /api/projects/:projectId
func (h *ProjectHandler) Delete(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), rd.OrganisationID, id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// PATCH /api/projects/:projectId/field-mapping
func (h *ProjectHandler) UpdateFieldMapping(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req struct {
		FieldMappingConfig json.RawMessage `json:"fieldMappingConfig"`
	}
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projectService.UpdateFieldMapping(c.Request.Context(), rd.OrganisationID, id, req.FieldMappingConfig)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, project)
}

// PATCH /api/projects/:projectId/de-identification
func (h *ProjectHandler) UpdateDeIdentification(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	var req struct {
		DeIdentificationConfig json.RawMessage `json:"deIdentificationConfig"`
	}
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.projectService.UpdateDeIdentification(c.Request.Context(), rd.OrganisationID, id, req.DeIdentificationConfig)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, project)
}
