package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps one catalog page with its metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func paginated[T any](page *catalog.Page[T]) PaginatedResponse {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse{
		Data:       items,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      page.Total,
		TotalPages: page.NumPages(),
		HasMore:    page.HasNext(),
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	if _, ok := entities.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrIllegalTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondServiceError answers a failed service call as JSON.
func respondServiceError(c *gin.Context, err error, context string) {
	status := errorStatus(err)
	switch status {
	case http.StatusInternalServerError:
		respondInternalError(c, err, context)
	case http.StatusBadRequest:
		verr, _ := entities.AsValidationError(err)
		c.JSON(status, ErrorResponse{Error: "validation failed", Code: "invalid", Details: verr.Fields})
	default:
		c.JSON(status, ErrorResponse{Error: err.Error()})
	}
}

// renderServiceError answers a failed service call with the error page.
func renderServiceError(c *gin.Context, err error, context string) {
	status := errorStatus(err)
	message := http.StatusText(status)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error (%s): %v", context, err)
	} else if status == http.StatusConflict || status == http.StatusBadRequest {
		message = err.Error()
	}
	render(c, status, "error.html", gin.H{
		"Title": http.StatusText(status),
		"Error": message,
	})
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer ID from the URL. A malformed ID
// cannot name a record, so it is answered as not found.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseUUIDParam extracts a copy identifier from the URL.
func parseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pageParam reads ?page=, treating anything unparsable as the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pageSizeParam reads ?page_size= within [1, 100], falling back to def.
func pageSizeParam(c *gin.Context, def int) int {
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 || size > 100 {
		return def
	}
	return size
}

// wantsJSON reports whether the client asked for a JSON answer.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
