package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/njprem/Apartment_APP_BackEnd/internal/ratelimit"
	"github.com/njprem/Apartment_APP_BackEnd/internal/transport/mail"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RunMigrations   bool
	JWTSecret       string
	AccessTokenTTL  time.Duration
	AllowOrigins    []string
	LogstashTCPAddr string

	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	SMTPUseTLS        bool
	MailSendPerMinute int

	PasswordResetOTPLength int

	RateLimitRules map[ratelimit.RouteClass]ratelimit.Rule
	// TrustForwardedFor derives the client key from the first X-Forwarded-For
	// hop. Only enable it behind a reverse proxy that overwrites that header.
	TrustForwardedFor  bool
	RateLimitExemptIPs []string
	RateLimitSweep     time.Duration

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOPublicURL     string
	MinIOBucketReports string
}

// MailConfigured reports whether enough SMTP settings are present to send.
func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPFrom != ""
}

func (c Config) StorageConfigured() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// Load reads the API server settings. DATABASE_URL and JWT_SECRET are
// required.
func Load() Config {
	cfg := load()
	cfg.DatabaseURL = must("DATABASE_URL")
	cfg.JWTSecret = must("JWT_SECRET")
	return cfg
}

// LoadAudit reads the same settings for offline tools that issue no tokens,
// so nothing is required up front.
func LoadAudit() Config {
	return load()
}

// Mailer maps the SMTP settings onto the reset mailer.
func (c Config) Mailer() mail.MailerConfig {
	return mail.MailerConfig{
		Host:      c.SMTPHost,
		Port:      c.SMTPPort,
		Username:  c.SMTPUsername,
		Password:  c.SMTPPassword,
		From:      c.SMTPFrom,
		UseTLS:    c.SMTPUseTLS,
		PerMinute: c.MailSendPerMinute,
	}
}

func load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		RunMigrations:   getenv("RUN_MIGRATIONS", "true") == "true",
		JWTSecret:       getenv("JWT_SECRET", ""),
		AccessTokenTTL:  duration("ACCESS_TOKEN_TTL", 30*time.Minute),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		SMTPHost:          getenv("SMTP_HOST", ""),
		SMTPPort:          getenv("SMTP_PORT", ""),
		SMTPUsername:      getenv("SMTP_USERNAME", ""),
		SMTPPassword:      getenv("SMTP_PASSWORD", ""),
		SMTPFrom:          getenv("SMTP_FROM", ""),
		SMTPUseTLS:        getenv("SMTP_USE_TLS", "false") == "true",
		MailSendPerMinute: positiveInt("MAIL_SEND_PER_MINUTE", 60),

		PasswordResetOTPLength: positiveInt("PASSWORD_RESET_OTP_LENGTH", 6),

		RateLimitRules:     rateLimitRules(),
		TrustForwardedFor:  getenv("RATE_LIMIT_TRUST_FORWARDED_FOR", "true") == "true",
		RateLimitExemptIPs: list("RATE_LIMIT_EXEMPT_IPS"),
		RateLimitSweep:     duration("RATE_LIMIT_SWEEP_INTERVAL", time.Minute),

		MinIOEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),
		MinIOBucketReports: getenv("MINIO_BUCKET_REPORTS", "apartment-reports"),
	}
}

// rateLimitRules reads RATE_LIMIT_<CLASS> overrides on top of the defaults.
func rateLimitRules() map[ratelimit.RouteClass]ratelimit.Rule {
	rules := ratelimit.DefaultRules()
	for _, class := range ratelimit.Classes() {
		key := "RATE_LIMIT_" + strings.ToUpper(string(class))
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		rule, err := ratelimit.ParseRule(raw)
		if err != nil {
			log.Printf("Warning: ignoring %s: %v", key, err)
			continue
		}
		rules[class] = rule
	}
	return rules
}

func splitAndTrim(input string) []string {
	out := splitList(input)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func list(k string) []string {
	return splitList(os.Getenv(k))
}

func duration(k string, d time.Duration) time.Duration {
	raw := os.Getenv(k)
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: ignoring %s=%q: expected a positive duration", k, raw)
		return d
	}
	return v
}

func positiveInt(k string, d int) int {
	raw := os.Getenv(k)
	if raw == "" {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: ignoring %s=%q: expected a positive integer", k, raw)
		return d
	}
	return v
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
