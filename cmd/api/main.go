package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/config"
	"github.com/noah-isme/learncenter-api/internal/database"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/handler"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/repository"
	"github.com/noah-isme/learncenter-api/internal/router"
	"github.com/noah-isme/learncenter-api/internal/service"
	cloud "github.com/noah-isme/learncenter-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var bus events.Bus = events.NewLocalBus(logger)
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, using in-process event bus")
		} else {
			bus = events.NewNATSBus(conn, logger)
		}
	}
	defer bus.Close()

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = uploader
	} else {
		logger.Info().Msg("cloudinary not configured, task image uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTStudentSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	studentService := service.NewStudentService(studentRepo, groupRepo, validate, activityService, bus, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	groupService := service.NewGroupService(groupRepo, courseRepo, studentRepo, validate, logger)
	taskService := service.NewTaskService(taskRepo, groupRepo, storage, bus, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, validate, activityService, bus, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, validate, activityService, bus, logger)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, validate, activityService, bus, logger)
	dashboardService := service.NewDashboardService(groupRepo, studentRepo, paymentRepo, redisClient, cfg.DashboardCacheTTL, logger)
	ratingService := service.NewRatingService(ratingRepo, studentRepo, redisClient, cfg.RatingCacheTTL, logger)
	cabinetService := service.NewCabinetService(service.CabinetRepositories{
		Students:    studentRepo,
		Payments:    paymentRepo,
		Attendance:  attendanceRepo,
		Tasks:       taskRepo,
		Submissions: submissionRepo,
	}, tokens, validate, logger)

	if err := ratingService.Subscribe(bus); err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe rating cache invalidation")
	}
	if err := dashboardService.Subscribe(bus); err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe dashboard cache invalidation")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    8 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:        &logger,
		AllowOrigins:  cfg.CORSOrigins,
		AccessLogging: !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(authService, logger),
		CabinetHandler:    handler.NewCabinetHandler(cabinetService, submissionService, ratingService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		GroupHandler:      handler.NewGroupHandler(groupService, logger),
		TaskHandler:       handler.NewTaskHandler(taskService, submissionService, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, logger),
		PaymentHandler:    handler.NewPaymentHandler(paymentService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		RatingHandler:     handler.NewRatingHandler(ratingService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		StaffAuth:         middleware.StaffAuth(tokens, userRepo),
		StudentAuth:       middleware.StudentAuth(tokens, studentRepo),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("http server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.LogFormat == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
