// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by every endpoint: the
// error envelope, success helpers, pagination and the translation of
// service errors into status codes and stable error codes.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "company not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-benefits-backend/internal/csvimport"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/http/middleware"
	"github.com/tbourn/go-benefits-backend/internal/services"
	"github.com/tbourn/go-benefits-backend/internal/utils"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
	// Field names the offending input on validation_failed
	Field string `json:"field,omitempty" example:"title"`
}

// fail aborts the request with a structured error. Server errors (>=500)
// are logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	abortWith(c, status, ErrorResponse{Code: code, Message: msg})
}

func abortWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for the router's NoRoute and
// NoMethod handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// serviceError maps a service-layer error to an HTTP response. Unknown
// errors become 500 internal_error and their text is logged, not returned.
func serviceError(c *gin.Context, err error) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		abortWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: fe.Error(), Field: fe.Field})

	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrLocationNotFound),
		errors.Is(err, services.ErrDiscountNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrImportRunNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrRoleNotFound):
		abortWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: err.Error(), Field: "role"})

	case errors.Is(err, services.ErrWeakPassword):
		abortWith(c, http.StatusBadRequest, ErrorResponse{Code: ErrCodeValidation, Message: err.Error(), Field: "password"})
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrDuplicateDiscount):
		fail(c, http.StatusConflict, ErrCodeDuplicateDiscount, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "already exists")
	case errors.Is(err, services.ErrInUse):
		fail(c, http.StatusConflict, ErrCodeInUse, "still referenced by other records")

	case errors.Is(err, services.ErrInvalidFileType):
		fail(c, http.StatusBadRequest, ErrCodeInvalidFileType, err.Error())
	case errors.Is(err, services.ErrEmptyUpload):
		fail(c, http.StatusBadRequest, ErrCodeEmptyFile, err.Error())
	case errors.Is(err, services.ErrFileTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeFileTooLarge, err.Error())
	case errors.Is(err, csvimport.ErrHeadersNotSuitable):
		fail(c, http.StatusBadRequest, ErrCodeHeadersNotSuitable, "headers not suitable")
	case errors.Is(err, csvimport.ErrEmptyDelimiter):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrImportInProgress):
		fail(c, http.StatusConflict, ErrCodeImportInProgress, err.Error())

	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// sortParam turns the "sort" query param into a whitelisted ORDER BY clause.
func sortParam(c *gin.Context, allowed map[string]string) string {
	return utils.ParseSort(c.Query("sort"), allowed)
}
