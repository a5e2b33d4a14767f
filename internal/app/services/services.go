package services

// Services groups the application services handed to the controllers
type Services struct {
	AuthService         *AuthService
	RegistrationService *RegistrationService
	StudentService      *StudentService
	EventService        *EventService
	WebhookService      *WebhookService
}
