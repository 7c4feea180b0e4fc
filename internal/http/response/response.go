package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curator-backend/internal/platform/apierr"
)

const internalMessage = "Internal server error"

type ErrorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

type ListBody[T any] struct {
	Items []T `json:"items"`
}

var exposeInternal atomic.Bool

// ExposeInternalErrors controls whether 500 responses carry the underlying
// error message. Only development turns it on.
func ExposeInternalErrors(on bool) { exposeInternal.Store(on) }

// RespondError writes err as {error, type} with the status of its kind. The
// error is attached to the gin context so the request logger records it.
func RespondError(c *gin.Context, err error) {
	kind := apierr.KindOf(err)
	if kind == "" {
		kind = apierr.KindInternal
	}
	msg := apierr.Message(err)
	if kind == apierr.KindInternal {
		_ = c.Error(err)
		if !exposeInternal.Load() || msg == "" {
			msg = internalMessage
		}
	}
	c.AbortWithStatusJSON(kind.Status(), ErrorBody{Error: msg, Type: string(kind)})
}

// RespondStatus writes an error body for statuses outside the apierr taxonomy.
func RespondStatus(c *gin.Context, status int, typ, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg, Type: typ})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondList wraps items as {items: [...]}; nil becomes an empty array.
func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, ListBody[T]{Items: items})
}
