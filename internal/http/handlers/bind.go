package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/ctxutil"
)

const maxJSONBodyBytes = 1 << 20

// bindJSON decodes the request body into dst. An absent body, whitespace, null
// or {} all count as empty. On failure the error response is already written.
func bindJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil {
		response.RespondError(c, apierr.Validation("Request body cannot be empty"))
		return false
	}
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, apierr.Validation("Request body is too large"))
			return false
		}
		response.RespondError(c, apierr.Validation("Invalid JSON"))
		return false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		response.RespondError(c, apierr.Validation("Request body cannot be empty"))
		return false
	}
	if !json.Valid(raw) {
		response.RespondError(c, apierr.Validation("Invalid JSON"))
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		response.RespondError(c, apierr.Validation("Request body must be a JSON object"))
		return false
	}
	if len(probe) == 0 {
		response.RespondError(c, apierr.Validation("Request body cannot be empty"))
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			response.RespondError(c, apierr.Validation("Invalid value for %s", typeErr.Field))
			return false
		}
		response.RespondError(c, apierr.Validation("Invalid request body"))
		return false
	}
	return true
}

// identity returns the caller set by RequireAuth.
func identity(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, apierr.Unauthorized("Authentication required"))
		return nil, false
	}
	return rd, true
}

// pathUUID reads a path parameter. ValidateUUIDParams has normally rejected bad
// values already.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, apierr.Validation("Invalid UUID format for parameter: %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func queryEnum[T ~string](c *gin.Context, key string) *T {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}
