package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accordfamily/accord-backend/internal/infrastructure/http/middleware"
)

// Router wires handlers onto the echo instance
type Router struct {
	auth          *AuthHandler
	messages      *MessageHandler
	calls         *CallHandler
	policy        *PolicyHandler
	notifications *NotificationHandler
	authMW        *middleware.AuthMiddleware
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	messageHandler *MessageHandler,
	callHandler *CallHandler,
	policyHandler *PolicyHandler,
	notificationHandler *NotificationHandler,
	authMW *middleware.AuthMiddleware,
) *Router {
	return &Router{
		auth:          authHandler,
		messages:      messageHandler,
		calls:         callHandler,
		policy:        policyHandler,
		notifications: notificationHandler,
		authMW:        authMW,
	}
}

// Setup registers all routes
func (r *Router) Setup(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	r.setupAuthRoutes(v1)
	r.setupMessageRoutes(v1)
	r.setupCallRoutes(v1)
	r.setupPolicyRoutes(v1)
	r.setupNotificationRoutes(v1)
}

func (r *Router) setupAuthRoutes(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/signup", r.auth.Signup)
	auth.POST("/signin", r.auth.Signin)
	auth.POST("/signout", r.auth.Signout, r.authMW.Authenticate)
	auth.GET("/me", r.auth.Me, r.authMW.Authenticate)
}

func (r *Router) setupMessageRoutes(g *echo.Group) {
	conversations := g.Group("/conversations", r.authMW.Authenticate)
	conversations.POST("", r.messages.CreateConversation)
	conversations.GET("", r.messages.ListConversations)
	conversations.POST("/:id/messages", r.messages.SendMessage)
	conversations.GET("/:id/messages", r.messages.ListMessages)
	conversations.GET("/:id/unread", r.messages.UnreadCount)

	messages := g.Group("/messages", r.authMW.Authenticate)
	messages.POST("/:id/read", r.messages.MarkRead)
}

func (r *Router) setupCallRoutes(g *echo.Group) {
	calls := g.Group("/calls", r.authMW.Authenticate)
	calls.POST("/schedule", r.calls.Schedule)
	calls.GET("/pending", r.calls.ListPending)
	calls.GET("/scheduled", r.calls.ListScheduled)
	calls.GET("/history", r.calls.History)
	calls.POST("/:id/respond", r.calls.Respond)
	calls.POST("/:id/join", r.calls.Join)

	sessions := g.Group("/sessions", r.authMW.Authenticate)
	sessions.POST("/:id/transcription", r.calls.PostTranscription)
	sessions.GET("/:id/transcription", r.calls.GetTranscript)
	sessions.POST("/:id/report", r.calls.Report)
	sessions.POST("/:id/end", r.calls.End)
	sessions.GET("/:id/analysis", r.calls.GetAnalysis)
}

func (r *Router) setupPolicyRoutes(g *echo.Group) {
	policy := g.Group("/policy", r.authMW.Authenticate)
	policy.POST("/orders", r.policy.Upload)
	policy.GET("/orders", r.policy.ActiveOrders)
	policy.GET("/orders/document", r.policy.DocumentURL)
}

func (r *Router) setupNotificationRoutes(g *echo.Group) {
	notifications := g.Group("/notifications", r.authMW.Authenticate)
	notifications.GET("", r.notifications.List)
	notifications.POST("/:id/read", r.notifications.MarkRead)
}
