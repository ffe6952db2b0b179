package handlers

import (
	"errors"
	"log"
	"net/http"

	"mining-pnl/internal/api/models"
	"mining-pnl/internal/model"

	"github.com/gin-gonic/gin"
)

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, component string, err error) {
	status, detail := errorDetail(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", component, err)
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func errorDetail(err error) (int, models.ErrorDetail) {
	var (
		ce  *model.ConfigError
		snf *model.SpecNotFoundError
		se  *model.SchemaError
	)
	switch {
	case errors.As(err, &ce):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    "INVALID_CONFIG",
			Message: err.Error(),
			Details: map[string]interface{}{"field": ce.Field},
		}
	case errors.As(err, &snf):
		return http.StatusNotFound, models.ErrorDetail{
			Code:    "SPEC_NOT_FOUND",
			Message: err.Error(),
			Details: map[string]interface{}{"model": snf.Model, "source": snf.Source, "available": snf.Available},
		}
	case errors.As(err, &se):
		d := map[string]interface{}{"source": se.Source}
		if se.Column != "" {
			d["column"] = se.Column
		}
		return http.StatusUnprocessableEntity, models.ErrorDetail{Code: "SCHEMA_ERROR", Message: err.Error(), Details: d}
	case errors.Is(err, model.ErrConfig):
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()}
	default:
		return http.StatusInternalServerError, models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}
