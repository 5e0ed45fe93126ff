package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/njprem/Apartment_APP_BackEnd/internal/config"
	"github.com/njprem/Apartment_APP_BackEnd/internal/logging"
	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
	"github.com/njprem/Apartment_APP_BackEnd/internal/ratelimit"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/Apartment_APP_BackEnd/internal/service"
	httpx "github.com/njprem/Apartment_APP_BackEnd/internal/transport/http"
	"github.com/njprem/Apartment_APP_BackEnd/internal/transport/mail"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	logCloser, err := logging.Setup(cfg.LogstashTCPAddr)
	if err != nil {
		log.Printf("logstash mirror disabled: %v", err)
	}
	defer logCloser.Close()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(ctx, db.DB); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	}

	metrics := obs.New(prometheus.DefaultRegisterer)

	users := postgres.NewUserRepo(db)
	resets := postgres.NewPasswordResetRepo(db)
	tokens := util.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	var sender service.PasswordResetSender
	if cfg.MailConfigured() {
		sender = mail.NewPasswordResetMailer(cfg.Mailer())
	} else {
		log.Println("SMTP is not configured; password reset emails cannot be delivered")
	}

	authSvc := service.NewAuthService(users, tokens, metrics)
	resetSvc := service.NewPasswordResetService(users, resets, sender, cfg.PasswordResetOTPLength, metrics)

	governor := ratelimit.New(cfg.RateLimitRules, ratelimit.WithSweepHook(metrics.RateLimitWindows))
	go governor.Run(ctx, cfg.RateLimitSweep)

	limiter := httpx.NewRateLimiter(governor, httpx.RateLimiterConfig{
		TrustForwardedFor: cfg.TrustForwardedFor,
		ExemptKeys:        cfg.RateLimitExemptIPs,
		Metrics:           metrics,
	})

	e := httpx.NewRouter(httpx.RouterConfig{
		AllowOrigins:      cfg.AllowOrigins,
		TrustForwardedFor: cfg.TrustForwardedFor,
		Metrics:           metrics,
	})
	httpx.RegisterAuth(e, authSvc, resetSvc, limiter)
	httpx.RegisterSwagger(e)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("apartment api listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Stopped")
}
