package main

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(), middleware.RequestID())

	// Rate limiter for public auth routes
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "paperdesk"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.GET("/projects/:id", svc.projectHandler.Get)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Members
			protected.GET("/projects/:id/members", svc.memberHandler.List)
			protected.DELETE("/projects/:id/members/:userID", svc.memberHandler.Remove)
			protected.PUT("/projects/:id/primary-client", svc.memberHandler.SetPrimaryClient)

			// Invitations
			protected.POST("/projects/:id/invitations", svc.invitationHandler.Create)
			protected.GET("/projects/:id/invitations", svc.invitationHandler.ListForProject)
			protected.GET("/invitations", svc.invitationHandler.ListMine)
			protected.POST("/invitations/accept", svc.invitationHandler.Accept)
			protected.DELETE("/invitations/:id", svc.invitationHandler.Cancel)

			// Project notes
			protected.GET("/projects/:id/notes", svc.noteHandler.ListForProject)

			// Notes
			protected.GET("/notes", svc.noteHandler.List)
			protected.POST("/notes", svc.noteHandler.Create)
			protected.GET("/notes/:id", svc.noteHandler.Get)
			protected.PUT("/notes/:id", svc.noteHandler.Update)
			protected.DELETE("/notes/:id", svc.noteHandler.Delete)

			// Folders
			protected.GET("/folders", svc.folderHandler.List)
			protected.POST("/folders", svc.folderHandler.Create)
			protected.PUT("/folders/:id", svc.folderHandler.Rename)
			protected.DELETE("/folders/:id", svc.folderHandler.Delete)

			// Categories
			protected.GET("/categories", svc.categoryHandler.List)
			protected.POST("/categories", svc.categoryHandler.Create)
			protected.PUT("/categories/:id", svc.categoryHandler.Update)
			protected.DELETE("/categories/:id", svc.categoryHandler.Delete)

			// Notifications
			protected.GET("/notifications", svc.notificationHandler.List)
			protected.GET("/notifications/unread-count", svc.notificationHandler.UnreadCount)
			protected.PUT("/notifications/:id/read", svc.notificationHandler.MarkRead)
			protected.PUT("/notifications/read-all", svc.notificationHandler.MarkAllRead)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Users
			admin.GET("/users", svc.userHandler.List)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.DELETE("/users/:id", svc.userHandler.Delete)

			// System Config
			admin.GET("/system-config/:group", svc.systemConfigHandler.GetGroup)
			admin.PUT("/system-config/:group", svc.systemConfigHandler.UpdateGroup)

			// System Logs
			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.GET("/system-logs/modules", svc.systemLogHandler.Modules)
		}
	}
}
