package models

// Event defines the event model based on the 'events' table
type Event struct {
	ID           int64   `json:"id" db:"event_id"`
	Title        string  `json:"title" db:"title"`
	Description  *string `json:"description" db:"description"`
	EventDate    string  `json:"eventDate" db:"event_date"` // YYYY-MM-DD
	StartTime    *string `json:"startTime" db:"start_time"`
	EndTime      *string `json:"endTime" db:"end_time"`
	LocationType *string `json:"locationType" db:"location_type"`
	FileName     *string `json:"fileName" db:"file_name"`
	FileKey      *string `json:"fileKey" db:"file_key"`
	EventSummary *string `json:"eventSummary" db:"event_summary"`
	AboutEvent   *string `json:"aboutEvent" db:"about_event"`
	EventAgenda  *string `json:"eventAgenda" db:"event_agenda"`
}
