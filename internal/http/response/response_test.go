package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/curator-backend/internal/platform/apierr"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body ErrorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
		msg    string
	}{
		{apierr.Validation("Name is required"), 400, "ValidationError", "Name is required"},
		{apierr.Unauthorized("No token provided"), 401, "UnauthorizedError", "No token provided"},
		{apierr.Forbidden("Admin access required"), 403, "ForbiddenError", "Admin access required"},
		{fmt.Errorf("load: %w", apierr.NotFound("Project")), 404, "NotFoundError", "Project not found"},
		{apierr.Conflict("taken"), 409, "ConflictError", "taken"},
	}
	for _, tc := range cases {
		rec, body := serve(t, func(c *gin.Context) { RespondError(c, tc.err) })
		require.Equal(t, tc.status, rec.Code)
		require.Equal(t, tc.typ, body.Type)
		require.Equal(t, tc.msg, body.Error)
	}
}

func TestRespondErrorHidesInternalMessages(t *testing.T) {
	ExposeInternalErrors(false)
	rec, body := serve(t, func(c *gin.Context) { RespondError(c, errors.New("pq: connection refused")) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "InternalServerError", body.Type)
	require.Equal(t, "Internal server error", body.Error)

	ExposeInternalErrors(true)
	defer ExposeInternalErrors(false)
	_, body = serve(t, func(c *gin.Context) { RespondError(c, errors.New("pq: connection refused")) })
	require.Equal(t, "pq: connection refused", body.Error)
}

func TestRespondListNeverNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { RespondList[string](c, nil) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.JSONEq(t, `{"items":[]}`, rec.Body.String())
}
