package main

import (
	"context"

	"github.com/lucaswan/paperdesk/internal/config"
	"github.com/lucaswan/paperdesk/internal/handlers"
	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/internal/utils"
	"github.com/lucaswan/paperdesk/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	authService *services.AuthService
	mailQueue   services.MailQueue
	mailWorker  *services.MailWorker
	viewCache   *services.ViewCache

	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	projectHandler      *handlers.ProjectHandler
	memberHandler       *handlers.ProjectMemberHandler
	invitationHandler   *handlers.InvitationHandler
	noteHandler         *handlers.NoteHandler
	folderHandler       *handlers.FolderHandler
	categoryHandler     *handlers.CategoryHandler
	notificationHandler *handlers.NotificationHandler
	systemConfigHandler *handlers.SystemConfigHandler
	systemLogHandler    *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	// Initialize system logger and cleanup scheduler
	services.InitSystemLogger(db)
	services.StartLogCleanupScheduler(db)

	// Core service graph
	accessService := services.NewAccessService(db)
	emailService := services.NewEmailService(db, cfg.App.BaseURL)
	notificationService := services.NewNotificationService(db)
	viewCache := services.NewViewCache(&cfg.Redis)

	// Mail queue (uses Redis if enabled, otherwise sync mode)
	mailQueue := services.InitMailQueue(cfg)
	deliver := func(ctx context.Context, task *services.MailTask) error {
		return emailService.Deliver(task.To, task.Subject, task.Body)
	}
	if syncQueue, ok := mailQueue.(*services.SyncMailQueue); ok {
		syncQueue.SetProcessor(deliver)
	}

	var mailWorker *services.MailWorker
	if cfg.Redis.Enabled {
		mailWorker = services.InitMailWorker(&cfg.Redis)
		if mailWorker != nil {
			mailWorker.SetProcessor(deliver)
			mailWorker.Start()
		}
	}

	invitationService := services.NewInvitationService(db, accessService, emailService, mailQueue, notificationService, viewCache)
	memberService := services.NewMemberService(db, accessService, emailService, mailQueue, notificationService, viewCache)
	projectService := services.NewProjectService(db, accessService)
	noteService := services.NewNoteService(db, accessService)
	folderService := services.NewFolderService(db)
	categoryService := services.NewCategoryService(db)
	systemConfigService := services.NewSystemConfigService(db)
	systemLogService := services.NewSystemLogService(db)

	authService := services.NewAuthService(db, &cfg.JWT, &cfg.LDAP)
	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		authService: authService,
		mailQueue:   mailQueue,
		mailWorker:  mailWorker,
		viewCache:   viewCache,

		authHandler:         handlers.NewAuthHandler(authService),
		userHandler:         handlers.NewUserHandler(db),
		projectHandler:      handlers.NewProjectHandler(projectService),
		memberHandler:       handlers.NewProjectMemberHandler(memberService),
		invitationHandler:   handlers.NewInvitationHandler(invitationService),
		noteHandler:         handlers.NewNoteHandler(noteService),
		folderHandler:       handlers.NewFolderHandler(folderService),
		categoryHandler:     handlers.NewCategoryHandler(categoryService),
		notificationHandler: handlers.NewNotificationHandler(notificationService),
		systemConfigHandler: handlers.NewSystemConfigHandler(systemConfigService),
		systemLogHandler:    handlers.NewSystemLogHandler(systemLogService),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	services.StopLogCleanupScheduler()

	if s.mailWorker != nil {
		s.mailWorker.Stop()
	}
	if s.mailQueue != nil {
		s.mailQueue.Close()
	}
	if s.viewCache != nil {
		s.viewCache.Close()
	}
	logger.Info().Msg("All services stopped")
}
