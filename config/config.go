package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL                  string
	DatabaseName         string
	BaseURL              string
	Port                 string
	Environment          string
	JWTSecret            string
	TokenTTL             time.Duration
	SendgridAPIKey       string
	MailFrom             string
	MailFromName         string
	ContactInbox         string
	CORSOrigins          []string
	RedisAddr            string
	RateLimitRPS         float64
	RateLimitBurst       int
	TrustedProxyHops     int
	RequestTimeout       time.Duration
	SchedulerEnabled     bool
	ReferralReminderDays int
}

// New sets up all config related services
func New() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("DB_NAME", "alumni")
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("MAIL_FROM", "no-reply@alumnihub.org")
	v.SetDefault("MAIL_FROM_NAME", "Alumni Hub")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("TRUSTED_PROXY_HOPS", 0)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("REFERRAL_REMINDER_DAYS", 7)

	// setup zap logger and replace default logger
	logger, err := setLogger(v.GetString("ENVIRONMENT"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                  v.GetString("DB_URI"),
		DatabaseName:         v.GetString("DB_NAME"),
		BaseURL:              v.GetString("BASE_URL"),
		Port:                 v.GetString("PORT"),
		Environment:          v.GetString("ENVIRONMENT"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		TokenTTL:             time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		SendgridAPIKey:       v.GetString("SENDGRID_API_KEY"),
		MailFrom:             v.GetString("MAIL_FROM"),
		MailFromName:         v.GetString("MAIL_FROM_NAME"),
		ContactInbox:         v.GetString("CONTACT_INBOX"),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS")),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RateLimitRPS:         v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:       v.GetInt("RATE_LIMIT_BURST"),
		TrustedProxyHops:     v.GetInt("TRUSTED_PROXY_HOPS"),
		RequestTimeout:       time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		SchedulerEnabled:     v.GetBool("SCHEDULER_ENABLED"),
		ReferralReminderDays: v.GetInt("REFERRAL_REMINDER_DAYS"),
	}
}

// Validate reports the first configuration problem that would keep the api from starting
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("DB_URI is required")
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	if c.TrustedProxyHops < 0 {
		return fmt.Errorf("TRUSTED_PROXY_HOPS cannot be negative")
	}
	if c.JWTSecret == "" {
		zap.S().Warn("JWT_SECRET is not set, admin routes will reject every token")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message, "status", httpStatusCode, "error", errText)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Message: message, Error: errText})
}

// ErrorResponse is the body written by ErrorStatus
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
