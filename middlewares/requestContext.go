package middlewares

import (
	"strconv"

	"github.com/enescc00/b2bsitesibitmis-sub000/appctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestContext copies the actor headers set by the API gateway into the
// request context and tags every request with a correlation id. Authentication
// itself happens upstream; the core only needs to know who acted.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if v := c.GetHeader("X-User-Id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				ctx = appctx.Set(ctx, appctx.ContextKeyUserId, id)
			}
		}
		if v := c.GetHeader("X-User-Name"); v != "" {
			ctx = appctx.Set(ctx, appctx.ContextKeyUserName, v)
		}

		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = appctx.Set(ctx, appctx.ContextKeyCorrelationId, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
