package headerextractors

import (
	"context"
	"net/http"

	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func updateContextWithRequestID(ctx *gin.Context, headers http.Header) {
	reqID := headers.Get(models.HttpRequestIDHeader)
	if reqID != "" {
		ctx.Set(helpers.CtxRequestID, reqID)
		reqCtx := context.WithValue(ctx.Request.Context(), helpers.CtxRequestID, reqID)
		ctx.Request = ctx.Request.WithContext(reqCtx)
	}
}

func updateContextWithSource(ctx *gin.Context, headers http.Header) {
	sourceHeader := headers.Get(models.HttpSourceHeader)
	if sourceHeader != "" {
		ctx.Set(helpers.CtxSource, sourceHeader)
		reqCtx := context.WithValue(ctx.Request.Context(), helpers.CtxSource, sourceHeader)
		ctx.Request = ctx.Request.WithContext(reqCtx)
	}
}

func RequestMetadataToContextMiddleware(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		updateContextWithRequestID(c, c.Request.Header)
		updateContextWithSource(c, c.Request.Header)
		c.Next()
	}
}
