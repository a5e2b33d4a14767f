package helpers

import (
	"math"
	"strconv"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
	DefaultPage     = 1 // pages are 1-based

	// MaxPage keeps (page-1)*MaxPageSize well inside a bigint OFFSET
	MaxPage = math.MaxInt32
)

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	return uint64(page-1) * uint64(size), uint64(size)
}

// TotalPages returns ceil(total/size), zero for an empty result
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}

// NewPaginationInfo creates the pagination block returned by list endpoints
func NewPaginationInfo(total int64, page, size int) dto.PaginationInfo {
	return dto.PaginationInfo{
		Page:       page,
		Limit:      size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}
}

// ParsePaginationParams reads page and limit from the query string. Missing or
// malformed values fall back to page 1 and DefaultPageSize.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return page, size
}
