package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nivora-labs/bootcamp-api/internal/config"
	"github.com/nivora-labs/bootcamp-api/internal/handler"
	"github.com/nivora-labs/bootcamp-api/internal/middleware"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CourseHandler     *handler.CourseHandler
	LessonHandler     *handler.LessonHandler
	QuizHandler       *handler.QuizHandler
	ActivityHandler   *handler.ActivityHandler
	SubmissionHandler *handler.SubmissionHandler
	CohortHandler     *handler.CohortHandler
	ProgressHandler   *handler.ProgressHandler
	AssistantHandler  *handler.AssistantHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleInstructor)
	instructorOnly := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.RegisterPublic(auth)

		users := api.Group("/users", jwtMiddleware, adminOnly)
		deps.AuthHandler.RegisterAdmin(users)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.RegisterRead(courses)

		coursesWrite := api.Group("/courses", jwtMiddleware, staff)
		deps.CourseHandler.RegisterWrite(coursesWrite)
	}

	if deps.LessonHandler != nil {
		lessons := api.Group("/lessons", jwtMiddleware)
		deps.LessonHandler.RegisterRead(lessons)

		lessonsWrite := api.Group("/lessons", jwtMiddleware, staff)
		deps.LessonHandler.RegisterWrite(lessonsWrite)

		modules := api.Group("/modules", jwtMiddleware, staff)
		deps.LessonHandler.RegisterModuleWrite(modules)
	}

	if deps.QuizHandler != nil {
		quizzes := api.Group("/quizzes", jwtMiddleware, studentOnly)
		deps.QuizHandler.Register(quizzes)
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware, studentOnly)
		deps.ActivityHandler.Register(activities)
	}

	if deps.SubmissionHandler != nil {
		projects := api.Group("/projects", jwtMiddleware, studentOnly)
		deps.SubmissionHandler.RegisterStudent(projects)

		submissions := api.Group("/submissions", jwtMiddleware, instructorOnly)
		deps.SubmissionHandler.RegisterInstructor(submissions)
	}

	if deps.CohortHandler != nil {
		cohorts := api.Group("/cohorts", jwtMiddleware, staff)
		deps.CohortHandler.Register(cohorts)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.RegisterProgress(progress)

		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.ProgressHandler.RegisterDashboard(dashboard)
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware, middleware.RateLimit("assistant", 30, time.Minute))
		deps.AssistantHandler.Register(assistant)
	}
}
