// Package handlers holds the gin handlers of the REST API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/middleware"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError maps err onto its code's status. Server-side failures are
// logged and masked; client errors pass their message and detail through.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), RequestID: middleware.GetRequestID(c)}
	var ae *errors.AppError
	if status < http.StatusInternalServerError && stderrors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	} else {
		resp.Message = errors.DefaultMessageForCode(code)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("code", code.String()),
			logging.String("request_id", resp.RequestID),
			logging.Err(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindError reports a malformed body as a bad request.
func bindError(c *gin.Context, logger logging.Logger, err error) {
	respondError(c, logger, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error()))
}
