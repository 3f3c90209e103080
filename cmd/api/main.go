package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/config"
	"github.com/nivora-labs/bootcamp-api/internal/database"
	"github.com/nivora-labs/bootcamp-api/internal/handler"
	"github.com/nivora-labs/bootcamp-api/internal/middleware"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
	"github.com/nivora-labs/bootcamp-api/internal/router"
	"github.com/nivora-labs/bootcamp-api/internal/service"
	"github.com/nivora-labs/bootcamp-api/pkg/ai"
	"github.com/nivora-labs/bootcamp-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Module{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.Activity{},
		&models.Project{},
		&models.Progress{},
		&models.QuizSubmission{},
		&models.Submission{},
		&models.Cohort{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Optional collaborators degrade to local fallbacks when unset.
	var events service.EventPublisher = service.NewNopPublisher()
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, events disabled")
		} else {
			defer conn.Close()
			events = service.NewNATSPublisher(conn, logger)
		}
	}

	notifier := service.NewLogNotifier(logger)
	if cfg.MailAPIKey != "" {
		mailClient, err := mailer.New(mailer.Config{
			APIKey:    cfg.MailAPIKey,
			BaseURL:   cfg.MailBaseURL,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
			Timeout:   cfg.MailTimeout,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("mailer misconfigured, falling back to log notifier")
		} else {
			notifier = service.NewMailNotifier(mailClient, cfg.MailTimeout, logger)
		}
	}

	var grader ai.Grader
	var assistant ai.Assistant
	if cfg.OpenAIAPIKey != "" {
		client, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey:         cfg.OpenAIAPIKey,
			GraderModel:    cfg.GraderModel,
			AssistantModel: cfg.AssistantModel,
			Logger:         logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("ai client misconfigured, grading falls back to defaults")
		} else {
			grader = client
			assistant = client
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	quizSubmissionRepo := repository.NewQuizSubmissionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	chatRepo := repository.NewChatRepository(db)

	var dashboardService service.DashboardService
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
			dashboardService = service.NewDashboardService(progressRepo, courseRepo, lessonRepo, nil, cfg.DashboardCacheTTL, logger)
		} else {
			defer redisClient.Close()
			dashboardService = service.NewDashboardService(progressRepo, courseRepo, lessonRepo, redisClient, cfg.DashboardCacheTTL, logger)
		}
	} else {
		dashboardService = service.NewDashboardService(progressRepo, courseRepo, lessonRepo, nil, cfg.DashboardCacheTTL, logger)
	}

	progressService := service.NewProgressService(progressRepo, lessonRepo, projectRepo, events, dashboardService, logger)
	quizService := service.NewQuizService(quizRepo, quizSubmissionRepo, progressService, validate, logger)
	activityService := service.NewActivityService(activityRepo, submissionRepo, grader, progressService, validate, cfg.OracleTimeout, logger)
	reviewService := service.NewReviewService(submissionRepo, projectRepo, userRepo, progressService, notifier, events, validate, logger)
	catalogService := service.NewCatalogService(courseRepo, moduleRepo, lessonRepo, quizRepo, activityRepo, projectRepo, validate, logger)
	cohortService := service.NewCohortService(cohortRepo, courseRepo, userRepo, validate, logger)
	authService := service.NewAuthService(userRepo, notifier, cfg.JWTSecret, cfg.TokenTTL, validate, logger)
	assistantService := service.NewAssistantService(chatRepo, assistant, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		CourseHandler:     handler.NewCourseHandler(catalogService, logger),
		LessonHandler:     handler.NewLessonHandler(catalogService, progressService, logger),
		QuizHandler:       handler.NewQuizHandler(quizService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(reviewService, logger),
		CohortHandler:     handler.NewCohortHandler(cohortService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, dashboardService, logger),
		AssistantHandler:  handler.NewAssistantHandler(assistantService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
