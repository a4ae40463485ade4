package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const codeValidation = "VALIDATION_ERROR"
const codeTooLarge = "UPLOAD_TOO_LARGE"

func statusFor(err error) (int, string) {
	if isTooLarge(err) {
		return http.StatusRequestEntityTooLarge, codeTooLarge
	}
	if errors.Is(err, common.ErrValidation) || (errors.Is(err, common.ErrInvalidInput) && common.CodeOf(err) == "") {
		return http.StatusBadRequest, codeValidation
	}
	switch code := common.CodeOf(err); code {
	case common.CodeUnsupportedInput:
		return http.StatusUnsupportedMediaType, code
	case common.CodeExtraction:
		return http.StatusUnprocessableEntity, code
	case common.CodeRemoteService:
		return http.StatusBadGateway, code
	case common.CodeTimeout:
		return http.StatusGatewayTimeout, code
	case common.CodeConfiguration, common.CodeRender:
		return http.StatusInternalServerError, code
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// isTooLarge detects a body cut off by http.MaxBytesReader. The multipart
// reader does not always wrap the underlying error.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	rid := common.RequestIDFromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.failed", "req_id", rid, "status", status, "code", code, "error", err)
	} else {
		s.logger.Warn("http.rejected", "req_id", rid, "status", status, "code", code, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}
