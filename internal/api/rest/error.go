package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/0xHoneyJar/loa-freeside-sub004/internal/api/shared/errors"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
)

// respondError maps a domain error to its HTTP status and terse wire body.
// Internal errors are logged with full detail; the client never sees it.
func respondError(c *gin.Context, err error, fields ...zap.Field) {
	status, code, msg := apierrors.Classify(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err, fields...)
	} else {
		logger.DebugCtx(c.Request.Context(), "Request rejected",
			append(fields, zap.String("code", string(code)), zap.Error(err))...)
	}
	c.JSON(status, apierrors.NewResponse(code, msg))
}

// respondValidation sends a 400 without an underlying error to classify.
func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apierrors.NewResponse(apierrors.ErrCodeValidation, message))
}
