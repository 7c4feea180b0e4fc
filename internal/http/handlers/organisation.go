package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/services"
)

type OrganisationHandler struct {
	orgService services.OrganisationService
}

func NewOrganisationHandler(orgService services.OrganisationService) *OrganisationHandler {
	return &OrganisationHandler{orgService: orgService}
}

// GET /api/organisations/current
func (h *OrganisationHandler) GetCurrent(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	org, err := h.orgService.GetCurrent(c.Request.Context(), rd.OrganisationID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, org)
}

// PATCH /api/organisations/current
func (h *OrganisationHandler) UpdateCurrent(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	org, err := h.orgService.UpdateCurrent(c.Request.Context(), rd.OrganisationID, req.Name)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, org)
}
