package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/services"
)

// multipartSlack covers the form fields and boundaries around the file part.
const multipartSlack = 1 << 20

type DataSourceHandler struct {
	dataSourceService services.DataSourceService
	maxUploadBytes    int64
}

func NewDataSourceHandler(dataSourceService services.DataSourceService, maxUploadBytes int64) *DataSourceHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = services.DefaultMaxUploadBytes
	}
	return &DataSourceHandler{dataSourceService: dataSourceService, maxUploadBytes: maxUploadBytes}
}

// POST /api/data-sources (multipart: file, name, sourceType)
func (h *DataSourceHandler) Create(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartSlack)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.RespondError(c, apierr.Validation("File exceeds the maximum size of %d MB", h.maxUploadBytes>>20))
		case errors.Is(err, http.ErrNotMultipart):
			response.RespondError(c, apierr.Validation("Request must be multipart/form-data"))
		default:
			response.RespondError(c, apierr.Validation("Invalid multipart form"))
		}
		return
	}
	defer func() { _ = c.Request.MultipartForm.RemoveAll() }()

	name := strings.TrimSpace(c.PostForm("name"))
	sourceType := strings.TrimSpace(c.PostForm("sourceType"))
	if name == "" || sourceType == "" {
		response.RespondError(c, apierr.Validation("Name and sourceType are required"))
		return
	}
	in := services.CreateDataSourceInput{Name: name, SourceType: types.SourceType(sourceType)}

	header, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		response.RespondError(c, apierr.Validation("Invalid file upload"))
		return
	default:
		f, err := header.Open()
		if err != nil {
			response.RespondError(c, apierr.Validation("Uploaded file could not be read"))
			return
		}
		defer f.Close()
		in.File = &services.UploadFile{
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Content:  f,
		}
	}

	ds, err := h.dataSourceService.Create(c.Request.Context(), rd.OrganisationID, rd.UserID, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, ds)
}

// GET /api/data-sources?status=&sourceType=
func (h *DataSourceHandler) List(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	filter := types.DataSourceFilter{
		Status:     queryEnum[types.DataSourceStatus](c, "status"),
		SourceType: queryEnum[types.SourceType](c, "sourceType"),
	}
	items, err := h.dataSourceService.List(c.Request.Context(), rd.OrganisationID, filter)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondList(c, items)
}

// GET /api/data-sources/:id
func (h *DataSourceHandler) Get(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ds, err := h.dataSourceService.Get(c.Request.Context(), rd.OrganisationID, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ds)
}

// PATCH /api/data-sources/:id
func (h *DataSourceHandler) Update(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateDataSourceInput
	if !bindJSON(c, &req) {
		return
	}
	ds, err := h.dataSourceService.Update(c.Request.Context(), rd.OrganisationID, id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ds)
}

// DELETE /api/data-sources/:id
func (h *DataSourceHandler) Delete(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.dataSourceService.Delete(c.Request.Context(), rd.OrganisationID, id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/data-sources/:id/api-connection
func (h *DataSourceHandler) CreateApiConnection(c *gin.Context) {
	rd, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ApiConnectorID   string          `json:"apiConnectorId"`
		ConnectionConfig json.RawMessage `json:"connectionConfig"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.ApiConnectorID == "" || len(req.ConnectionConfig) == 0 {
		response.RespondError(c, apierr.Validation("apiConnectorId and connectionConfig are required"))
		return
	}
	connectorID, err := uuid.Parse(req.ApiConnectorID)
	if err != nil {
		response.RespondError(c, apierr.Validation("apiConnectorId must be a valid UUID"))
		return
	}
	ds, err := h.dataSourceService.CreateApiConnection(c.Request.Context(), rd.OrganisationID, id, connectorID, req.ConnectionConfig)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ds)
}
