// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
	"khaata/internal/domain"
)

// --- List Query ---

// ListQuery carries the common list parameters of every collection.
type ListQuery struct {
	Search     string `form:"search"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Sort       string `form:"sort"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
}

// sortColumns maps API sort fields to storage columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"number":    "number",
	"total":     "total",
}

// ToFilter converts the query to a domain filter. Dates are YYYY-MM-DD; the
// end date includes the whole day.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(q.Search)
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	if q.Page > 1 {
		f.Offset = (q.Page - 1) * f.Limit
	}

	if q.Sort != "" {
		desc := strings.HasPrefix(q.Sort, "-")
		col, ok := sortColumns[strings.TrimPrefix(q.Sort, "-")]
		if !ok {
			return f, apperror.NewValidation("invalid sort field").WithDetail("sort", q.Sort)
		}
		if desc {
			col = "-" + col
		}
		f.OrderBy = col
	}

	if q.StartDate != "" {
		from, err := time.Parse(time.DateOnly, q.StartDate)
		if err != nil {
			return f, apperror.NewValidation("startDate must be YYYY-MM-DD").WithDetail("startDate", q.StartDate)
		}
		f.DateFrom = &from
	}
	if q.EndDate != "" {
		to, err := time.Parse(time.DateOnly, q.EndDate)
		if err != nil {
			return f, apperror.NewValidation("endDate must be YYYY-MM-DD").WithDetail("endDate", q.EndDate)
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &to
	}

	if q.CategoryID != "" {
		categoryID, err := id.Parse(q.CategoryID)
		if err != nil {
			return f, apperror.NewValidation("invalid categoryId")
		}
		f.CategoryID = &categoryID
	}
	return f, nil
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps every item of result with fn.
func NewListResponse[T any, R any](result domain.ListResult[T], fn func(T) R) ListResponse {
	items := make([]R, len(result.Items))
	for i, item := range result.Items {
		items[i] = fn(item)
	}
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}

// CountResponse is the body of /count endpoints.
type CountResponse struct {
	Count int64 `json:"count"`
}

// --- Base DTOs ---

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromBaseCatalog creates BaseResponse from entity.BaseCatalog.
func FromBaseCatalog(b entity.BaseCatalog) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Class   string         `json:"class"`
	Details map[string]any `json:"details,omitempty"`
}
