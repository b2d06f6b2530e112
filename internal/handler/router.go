package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/config"
	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/service"
)

// NewRouter wires every route. Paths under /api/v1/user and
// /api/v1/subscription require a valid access token.
func NewRouter(cfg config.ServerConfig, authSvc *service.AuthService, subsSvc *service.SubscriptionService) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware(cfg.AllowedOrigins, cfg.AllowCredentials))

	router.GET("/", Root)
	router.GET("/ping", Ping)

	authHandler := NewAuthHandler(authSvc)
	userHandler := NewUserHandler(authSvc)
	subsHandler := NewSubscriptionHandler(subsSvc)

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	user := api.Group("/user", AuthMiddleware(authSvc))
	{
		user.GET("/me", authHandler.Me)
		user.GET("/export", RequireFeature(subsSvc, model.FeatureExportUnlimited), userHandler.Export)
		user.POST("/logout-everywhere", userHandler.LogoutEverywhere)
		user.POST("/change-password/request", userHandler.RequestPasswordChange)
		user.POST("/change-password", userHandler.ChangePassword)
		user.POST("/change-email/request", userHandler.RequestEmailChange)
		user.POST("/change-email/confirm", userHandler.ConfirmEmailChange)
	}

	subscription := api.Group("/subscription", AuthMiddleware(authSvc))
	{
		subscription.GET("/status", subsHandler.Status)
		subscription.GET("/features", subsHandler.Features)
		subscription.POST("/activate", subsHandler.Activate)
		subscription.POST("/renew", subsHandler.Renew)
		subscription.POST("/cancel", subsHandler.Cancel)
	}

	return router
}
