package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/umutkoseali/gymnotify/internal/channel"
	"github.com/umutkoseali/gymnotify/internal/config"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/handler"
	"github.com/umutkoseali/gymnotify/internal/infra/postgresql"
	"github.com/umutkoseali/gymnotify/internal/infra/postgresql/migrations"
	infraredis "github.com/umutkoseali/gymnotify/internal/infra/redis"
	"github.com/umutkoseali/gymnotify/internal/observability"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"github.com/umutkoseali/gymnotify/internal/service"
	"github.com/umutkoseali/gymnotify/internal/transport"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewSendRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	smsTransport, err := channel.NewSMSTransport(cfg.SMSEndpoint, cfg.SMSAPIKey, cfg.SMSSenderID)
	if err != nil {
		logger.Fatal("sms transport initialization failed", zap.Error(err))
	}
	registry := channel.NewRegistry()
	registry.Register(domain.ChannelSMS, smsTransport)
	registry.Register(domain.ChannelWhatsApp, channel.NewWhatsAppTransport())

	memberRepo := repository.NewGormMemberRepo(db)
	draftRepo := repository.NewGormDraftRepo(db)
	logRepo := repository.NewGormLogRepo(db)
	paymentRepo := repository.NewGormPaymentRepo(db)
	attendanceRepo := repository.NewGormAttendanceRepo(db)

	metrics := observability.NewMetrics()

	membershipSvc, err := service.NewMembershipService(memberRepo, paymentRepo, logger)
	if err != nil {
		logger.Fatal("membership service initialization failed", zap.Error(err))
	}

	attendanceSvc, err := service.NewAttendanceService(attendanceRepo, memberRepo, logger)
	if err != nil {
		logger.Fatal("attendance service initialization failed", zap.Error(err))
	}

	eligibility, err := service.NewEligibilityResolver(memberRepo)
	if err != nil {
		logger.Fatal("eligibility resolver initialization failed", zap.Error(err))
	}

	messageSvc, err := service.NewMessageService(draftRepo, memberRepo, eligibility, cfg.OrgName, logger)
	if err != nil {
		logger.Fatal("message service initialization failed", zap.Error(err))
	}
	messageSvc.SetMetrics(metrics)

	dispatchSvc, err := service.NewDispatchService(
		draftRepo,
		memberRepo,
		logRepo,
		registry,
		rateLimiter,
		cfg.DispatchConcurrency,
		time.Duration(cfg.SendTimeoutSeconds)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatal("dispatch service initialization failed", zap.Error(err))
	}
	dispatchSvc.SetMetrics(metrics)

	scanJob, err := service.NewExpiryScanJob(messageSvc, memberRepo, logger)
	if err != nil {
		logger.Fatal("expiry scan job initialization failed", zap.Error(err))
	}
	scanJob.SetMetrics(metrics)

	scheduler, err := service.NewScanScheduler(scanJob, time.Duration(cfg.ScanIntervalMinutes)*time.Minute, logger)
	if err != nil {
		logger.Fatal("scan scheduler initialization failed", zap.Error(err))
	}

	sweeper, err := service.NewClaimSweeper(
		draftRepo,
		time.Duration(cfg.SweepIntervalSecs)*time.Second,
		time.Duration(cfg.ClaimMaxAgeSecs)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatal("claim sweeper initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(metrics.Handler())(c.Context())
		return nil
	})

	if err := handler.RegisterMemberRoutes(app, membershipSvc); err != nil {
		logger.Fatal("member route registration failed", zap.Error(err))
	}
	if err := handler.RegisterPaymentRoutes(app, membershipSvc); err != nil {
		logger.Fatal("payment route registration failed", zap.Error(err))
	}
	if err := handler.RegisterAttendanceRoutes(app, attendanceSvc); err != nil {
		logger.Fatal("attendance route registration failed", zap.Error(err))
	}
	if err := handler.RegisterMessageRoutes(app, messageSvc, dispatchSvc, logRepo); err != nil {
		logger.Fatal("message route registration failed", zap.Error(err))
	}
	if err := handler.RegisterJobRoutes(app, scanJob); err != nil {
		logger.Fatal("job route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gymnotify api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		return scheduler.Start(gCtx)
	})

	g.Go(func() error {
		return sweeper.Start(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", zap.Error(err))
	}
}
