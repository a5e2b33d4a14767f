package dto

// TriggerWebhookRequest asks the server to start the n8n pipeline for a student.
// student_id may be a JSON number or a numeric string.
type TriggerWebhookRequest struct {
	StudentID interface{} `json:"student_id" swaggertype:"integer" example:"42"`
}

// TriggerWebhookResponse is returned when n8n accepted the trigger
type TriggerWebhookResponse struct {
	Success     bool        `json:"success" example:"true"`
	Message     string      `json:"message" example:"n8n pipeline triggered successfully"`
	StudentID   int64       `json:"student_id" example:"42"`
	N8NResponse interface{} `json:"n8n_response"`
}
