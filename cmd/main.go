package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kestrel/config"
	"github.com/lshigami/Kestrel/database"
	_ "github.com/lshigami/Kestrel/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Kestrel/internal/controller"
	"github.com/lshigami/Kestrel/internal/logger"
	"github.com/lshigami/Kestrel/internal/middleware"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/lshigami/Kestrel/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Kestrel Exam Attempt API
// @version 1.0
// @description Exam attempt lifecycle and scoring engine: attempts, answers, auto-scoring and manual evaluation.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewPurchaseRepository,
			repository.NewUserRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewEntitlementService,
			service.NewWebhookNotifier,
			service.NewExamService,
			service.NewAttemptService,
			service.NewAnswerService,
			service.NewEvaluationService,
			service.NewSuggestionService,
			service.NewJanitor,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewAttemptController,
			controller.NewAnswerController,
			controller.NewExamController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(MigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartJanitor),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Route access logging through zerolog instead of Gin's default logger.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	attemptCtrl *controller.AttemptController,
	answerCtrl *controller.AnswerController,
	examCtrl *controller.ExamController,
) {
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Authenticate(cfg.JWTSecret))
	{
		exams := apiGroup.Group("/exams")
		exams.GET("", examCtrl.GetAllExams)
		exams.GET("/:id", examCtrl.GetExamDetails)

		attempts := apiGroup.Group("/attempts")
		attempts.POST("", attemptCtrl.CreateAttempt)
		attempts.GET("", attemptCtrl.ListAttempts)
		attempts.GET("/:id", attemptCtrl.GetAttempt)
		attempts.PATCH("/:id", attemptCtrl.UpdateAttempt)
		attempts.DELETE("/:id", attemptCtrl.DeleteAttempt)
		attempts.POST("/:id/assign/:evaluator_id",
			middleware.RequireRoles(model.RoleAdmin), attemptCtrl.AssignEvaluator)

		answers := apiGroup.Group("/answers")
		answers.POST("", answerCtrl.UpsertAnswer)
		answers.PATCH("/:id", answerCtrl.UpdateAnswer)
		answers.GET("/attempt/:attempt_id", answerCtrl.ListAnswersByAttempt)
		answers.POST("/:id/evaluate",
			middleware.RequireRoles(model.RoleTeacher, model.RoleAdmin), answerCtrl.EvaluateAnswer)
		answers.POST("/bulk-evaluate/:attempt_id",
			middleware.RequireRoles(model.RoleTeacher, model.RoleAdmin), answerCtrl.BulkEvaluate)
		answers.GET("/:id/suggestion",
			middleware.RequireRoles(model.RoleTeacher, model.RoleAdmin), answerCtrl.SuggestMarks)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Kestrel API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartJanitor wires the overdue-attempt sweeper into the fx lifecycle.
func StartJanitor(lc fx.Lifecycle, janitor *service.Janitor) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return janitor.Start()
		},
		OnStop: func(ctx context.Context) error {
			janitor.Stop()
			return nil
		},
	})
}

func MigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
