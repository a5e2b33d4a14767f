package routes

import (
	"github.com/cmis/studentportal/internal/app/controllers"
	"github.com/cmis/studentportal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth    *controllers.AuthController
	Student *controllers.StudentController
	Event   *controllers.EventController
	Webhook *controllers.WebhookController
	Health  *controllers.HealthController
}

// SetupRouter configures all application routes. limiter guards the
// credential and registration endpoints; nil disables it.
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) {
	router.GET("/ping", c.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", c.Health.Health)

	throttle := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if limiter == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{limiter.Middleware(), handler}
	}

	auth := api.Group("/auth")
	{
		auth.POST("/login", throttle(c.Auth.Login)...)
		auth.GET("/session", authMiddleware.JWTAuth(), c.Auth.Session)
		auth.POST("/logout", authMiddleware.JWTAuth(), c.Auth.Logout)
	}

	students := api.Group("/students")
	{
		students.POST("/register", throttle(c.Student.Register)...)
		students.GET("", c.Student.ListStudents)
		students.GET("/:id", c.Student.GetStudent)

		owned := students.Group("")
		owned.Use(authMiddleware.JWTAuth())
		{
			owned.PUT("/:id", c.Student.UpdateStudent)
			owned.PATCH("/:id", c.Student.UpdateStudent)
		}
	}

	events := api.Group("/events")
	{
		events.GET("", c.Event.ListEvents)
		events.GET("/:id", c.Event.GetEvent)
	}

	webhook := api.Group("/webhook")
	{
		webhook.POST("/n8n", c.Webhook.Trigger)
		webhook.GET("/n8n", c.Webhook.TriggerFromQuery)
	}
}
