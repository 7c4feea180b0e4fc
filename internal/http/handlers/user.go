package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), rd.OrganisationID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, user)
}

// GET /api/users?role=
func (h *UserHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	users, err := h.userService.List(c.Request.Context(), rd.OrganisationID, queryEnum[types.Role](c, "role"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, users)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), rd.OrganisationID, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), rd.OrganisationID, id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), rd.OrganisationID, id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}
