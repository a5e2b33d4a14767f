package dto

// EventResponse is the public shape of an event
type EventResponse struct {
	ID           int64    `json:"id" example:"3"`
	Title        string   `json:"title" example:"Resume Workshop"`
	Description  *string  `json:"description"`
	EventDate    string   `json:"eventDate" example:"2025-10-14"`
	StartTime    *string  `json:"startTime" example:"17:30:00"`
	EndTime      *string  `json:"endTime" example:"19:00:00"`
	LocationType *string  `json:"locationType" example:"In-Person"`
	FileName     *string  `json:"fileName"`
	FileURL      *string  `json:"fileUrl"`
	FileKey      *string  `json:"fileKey"`
	EventSummary *string  `json:"eventSummary"`
	AboutEvent   *string  `json:"aboutEvent"`
	EventAgenda  *string  `json:"eventAgenda"`
	Agenda       []string `json:"agenda"`
	IsPast       bool     `json:"isPast"`
}

// EventListResponse is returned by GET /events
type EventListResponse struct {
	Success    bool            `json:"success" example:"true"`
	Events     []EventResponse `json:"events"`
	Pagination PaginationInfo  `json:"pagination"`
}

// EventEnvelope wraps a single event
type EventEnvelope struct {
	Success bool          `json:"success" example:"true"`
	Event   EventResponse `json:"event"`
}
