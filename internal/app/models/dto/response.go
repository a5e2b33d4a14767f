package dto

// SuccessResponse represents a bare success acknowledgement
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
}

// PaginationInfo describes one page of a list endpoint
type PaginationInfo struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"50"`
	Total      int64 `json:"total" example:"5"`
	TotalPages int   `json:"totalPages" example:"1"`
}

// StorageHealth reports object storage status on the health endpoint
type StorageHealth struct {
	Configured       bool  `json:"configured"`
	PresignFallbacks int64 `json:"presignFallbacks"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status   string        `json:"status" example:"ok"`
	Database string        `json:"database" example:"up"`
	Sessions string        `json:"sessions" example:"redis"`
	Storage  StorageHealth `json:"storage"`
}
