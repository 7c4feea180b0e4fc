package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/http/response"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
)

// ValidateUUIDParams rejects requests whose "id" or "...Id" path params are not
// canonical 8-4-4-4-12 UUIDs.
func ValidateUUIDParams() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range c.Params {
			if p.Key != "id" && !strings.HasSuffix(p.Key, "Id") {
				continue
			}
			if !canonicalUUID(p.Value) {
				response.RespondError(c, apierr.Validation("Invalid UUID format for parameter: %s", p.Key))
				return
			}
		}
		c.Next()
	}
}

func canonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
