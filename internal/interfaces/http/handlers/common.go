// Common helper functions for HTTP handlers.

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/phytokg/termlink/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps application-level errors to HTTP status codes. Internal
// errors are masked; their detail stays in the logs.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	msg := err.Error()
	if code == errors.ErrCodeInternal || code == errors.CodeOK {
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code.String(), Message: msg})
}

// respondBadJSON reports a request body that failed to decode.
func respondBadJSON(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
}
