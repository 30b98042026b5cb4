package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps a service error to its HTTP status code. Unknown
// errors become a generic 500 without leaking details to the client.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), APIResponse{
			Success: false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: "an unexpected error occurred",
	})
}

// respondBindError converts a gin binding failure into a validation
// response with per-field messages.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "validation failed",
			Errors:  fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Message: "invalid request body",
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}
