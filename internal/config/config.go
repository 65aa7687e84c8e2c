package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	JWTTTL            time.Duration
	AllowOrigins      []string
	LogstashTCPAddr   string
	ResendAPIKey      string
	ResendFrom        string
	OTPMaxAttempts    int
	OTPDefaultLength  int
	MaxSessionMinutes int
	AuthRatePerSecond float64
	AuthRateBurst     int
	BootstrapAdmin    bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	jwtTTL := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("JWT_TTL", "24h")); err == nil && v > 0 {
		jwtTTL = v
	}

	maxAttempts := 3
	if v, err := strconv.Atoi(getenv("OTP_MAX_ATTEMPTS", "3")); err == nil && v > 0 {
		maxAttempts = v
	}

	otpLen := 4
	if v, err := strconv.Atoi(getenv("OTP_DEFAULT_LENGTH", "4")); err == nil && v > 0 {
		otpLen = v
	}

	maxSession := 24 * 60
	if v, err := strconv.Atoi(getenv("MAX_SESSION_MINUTES", "1440")); err == nil && v > 0 {
		maxSession = v
	}

	authRate := 1.0
	if v, err := strconv.ParseFloat(getenv("AUTH_RATE_PER_SECOND", "1"), 64); err == nil && v > 0 {
		authRate = v
	}

	authBurst := 5
	if v, err := strconv.Atoi(getenv("AUTH_RATE_BURST", "5")); err == nil && v > 0 {
		authBurst = v
	}

	return Config{
		Port:              getenv("PORT", "3000"),
		DatabaseURL:       must("DATABASE_URL"),
		JWTSecret:         must("JWT_SECRET"),
		JWTTTL:            jwtTTL,
		AllowOrigins:      splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:   getenv("LOGSTASH_TCP_ADDR", ""),
		ResendAPIKey:      getenv("RESEND_API_KEY", ""),
		ResendFrom:        getenv("RESEND_FROM_EMAIL", "Timexa Team <onboarding@resend.dev>"),
		OTPMaxAttempts:    maxAttempts,
		OTPDefaultLength:  otpLen,
		MaxSessionMinutes: maxSession,
		AuthRatePerSecond: authRate,
		AuthRateBurst:     authBurst,
		BootstrapAdmin:    getenv("BOOTSTRAP_DEFAULT_ADMIN", "false") == "true",
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
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
