// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"procure/internal/delivery/http/middleware"
	"procure/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	TwoFactorHandler  *handler.TwoFactorHandler
	AccountHandler    *handler.AccountHandler
	SessionMiddleware *middleware.SessionMiddleware
	LoggerMiddleware  *middleware.LoggerMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	twoFactorHandler  *handler.TwoFactorHandler
	accountHandler    *handler.AccountHandler
	sessionMiddleware *middleware.SessionMiddleware
	loggerMiddleware  *middleware.LoggerMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		twoFactorHandler:  params.TwoFactorHandler,
		accountHandler:    params.AccountHandler,
		sessionMiddleware: params.SessionMiddleware,
		loggerMiddleware:  params.LoggerMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.loggerMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes: the login state machine and the password lifecycle.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.accountHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/verify-2fa", r.authHandler.VerifyTwoFactor)
		authGroup.POST("/change-password", r.authHandler.ChangePassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)
		authGroup.GET("/reset-password", r.authHandler.CheckResetToken)
		authGroup.POST("/update-password", r.authHandler.UpdatePassword)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Routes that require a live session.
	userGroup := e.Group("/user")
	userGroup.Use(r.sessionMiddleware.Authenticate)
	{
		userGroup.GET("/me", r.authHandler.Me)
		userGroup.POST("/change-password", r.authHandler.ChangePassword)
		userGroup.POST("/2fa/enroll", r.twoFactorHandler.Begin)
		userGroup.POST("/2fa/confirm", r.twoFactorHandler.Confirm)
		userGroup.DELETE("/2fa", r.twoFactorHandler.Disable)
	}

	// Admin routes: account review and lifecycle.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.sessionMiddleware.Authenticate)
	adminGroup.Use(r.sessionMiddleware.RequireAdmin)
	{
		adminGroup.GET("/users", r.accountHandler.List)
		adminGroup.GET("/users/pending", r.accountHandler.ListPending)
		adminGroup.POST("/users", r.accountHandler.CreateUser)
		adminGroup.POST("/users/:id/approve", r.accountHandler.Approve)
		adminGroup.POST("/users/:id/reject", r.accountHandler.Reject)
		adminGroup.PUT("/users/:id/role", r.accountHandler.UpdateRole)
		adminGroup.DELETE("/users/:id", r.accountHandler.Remove)
	}
}
