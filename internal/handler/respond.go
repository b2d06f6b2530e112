package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/service"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, model.Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, model.Envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, model.Envelope{Success: false, Message: message})
}

// respondBindError turns a failed ShouldBindJSON into a 400 with
// per-field messages where the validator provides them.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]model.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, model.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, model.Envelope{
			Success: false,
			Message: "validation failed",
			Errors:  fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "len":
		return "has the wrong length"
	default:
		return "is invalid"
	}
}

// writeServiceError maps service sentinel errors onto the HTTP error
// taxonomy. Anything unrecognized becomes a generic 500 without leaking
// internals.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCodeInvalid):
		respondError(c, http.StatusBadRequest, "invalid or expired code")
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "server error")
	}
}
