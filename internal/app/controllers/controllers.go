package controllers

import (
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ipelms/ipelms/internal/app/models/dto"
)

// filepathBase returns the download file name for a stored attachment path.
func filepathBase(path string) string {
	return filepath.Base(path)
}

// parseIDParam parses a positive int64 path parameter. On failure it writes
// the 400 response itself and returns ok=false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.JSON(400, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
