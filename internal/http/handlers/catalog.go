package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/services"
)

// CatalogHandler serves the global read-only catalog: canonical schemas,
// processing pipelines and API connectors.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GET /api/canonical-schemas?category=
func (h *CatalogHandler) ListSchemas(c *gin.Context) {
	schemas, err := h.catalogService.ListSchemas(c.Request.Context(), queryEnum[types.SchemaCategory](c, "category"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, schemas)
}

// GET /api/canonical-schemas/:id
func (h *CatalogHandler) GetSchema(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	schema, err := h.catalogService.GetSchema(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, schema)
}

// GET /api/processing-pipelines
func (h *CatalogHandler) ListPipelines(c *gin.Context) {
	pipelines, err := h.catalogService.ListPipelines(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, pipelines)
}

// GET /api/processing-pipelines/:id
func (h *CatalogHandler) GetPipeline(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	pipeline, err := h.catalogService.GetPipeline(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, pipeline)
}

// GET /api/api-connectors
func (h *CatalogHandler) ListConnectors(c *gin.Context) {
	connectors, err := h.catalogService.ListConnectors(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, connectors)
}

// GET /api/api-connectors/:id
func (h *CatalogHandler) GetConnector(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	connector, err := h.catalogService.GetConnector(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, connector)
}
