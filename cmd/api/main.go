package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/timexa/timexa-backend/internal/config"
	"github.com/timexa/timexa-backend/internal/logging"
	"github.com/timexa/timexa-backend/internal/metrics"
	"github.com/timexa/timexa-backend/internal/repository/postgres"
	"github.com/timexa/timexa-backend/internal/service"
	transporthttp "github.com/timexa/timexa-backend/internal/transport/http"
	"github.com/timexa/timexa-backend/internal/transport/mail"
	"github.com/timexa/timexa-backend/internal/util"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.WithError(err).Warn("logstash writer disabled")
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	attendanceRepo := postgres.NewAttendanceLogRepo(db)
	verificationRepo := postgres.NewVerificationRepo(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	mailer := mail.NewResendMailer(cfg.ResendAPIKey, cfg.ResendFrom, log, collector)
	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	verificationService := service.NewVerificationService(verificationRepo, cfg.OTPMaxAttempts, cfg.OTPDefaultLength)
	authService := service.NewAuthService(userRepo, sessionRepo, verificationService, mailer, jwtManager, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, cfg.MaxSessionMinutes)
	userService := service.NewUserService(userRepo)

	if cfg.BootstrapAdmin {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, created, err := authService.CreateDefaultAdmin(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("default admin bootstrap failed")
		}
		if created {
			log.Info("default admin created")
		}
	}

	e := transporthttp.NewRouter(cfg.AllowOrigins, log, collector, registry)
	limiter := transporthttp.NewIPRateLimiter(rate.Limit(cfg.AuthRatePerSecond), cfg.AuthRateBurst)

	transporthttp.RegisterAuth(e, authService, limiter, collector)
	transporthttp.RegisterAttendance(e, authService, attendanceService, collector)
	transporthttp.RegisterUsers(e, authService, userService)
	transporthttp.RegisterSwagger(e)

	log.WithField("port", cfg.Port).Info("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
