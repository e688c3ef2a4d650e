package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/tasksync/internal/common"
)

// writeError maps a service error to its HTTP status and a {"message"} body.
// Unknown errors become 500 and are logged with full detail.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, common.ErrorValidation):
		status, msg = http.StatusBadRequest, common.Message(err)
	case errors.Is(err, common.ErrRefreshTokenExpired):
		status, msg = http.StatusForbidden, "Refresh token expired, please log in again"
	case errors.Is(err, common.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "Not authorized, token expired"
	case errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "Not authorized, token failed"
	case errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, common.Message(err)
	case errors.Is(err, common.ErrorForbidden):
		status, msg = http.StatusForbidden, common.Message(err)
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, common.Message(err)
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"message": msg})
}

// bindError turns a binding failure into a readable 400.
func (s *HTTPServer) bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": strings.Join(msgs, "; ")})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
