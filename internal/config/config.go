// Package config maps flags, environment and an optional config file
// onto one struct consumed by the gateway.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret         string
	AllowClaimFallback bool

	SweepInterval time.Duration
	ReportDir     string

	TotalDays       int
	QuestionsPerDay int

	CORSOrigins []string

	AdminUser     string
	AdminPassword string
	SeedDemo      bool

	LogLevel  string
	LogFormat string
}

// FromViper reads every setting with its default applied. Keys use the
// flag spelling ("db-driver"); the env equivalent is PREPFORGE_DB_DRIVER.
func FromViper(v *viper.Viper) Config {
	return Config{
		HTTPAddr:           stringOr(v, "addr", ":8080"),
		DBDriver:           stringOr(v, "db-driver", "sqlite"),
		DBDSN:              v.GetString("db-dsn"),
		AuthSecret:         stringOr(v, "auth-secret", "dev-secret-change-me"),
		AllowClaimFallback: v.GetBool("allow-claim-fallback"),
		SweepInterval:      durationOr(v, "sweep-interval", 5*time.Minute),
		ReportDir:          stringOr(v, "report-dir", "./data/reports"),
		TotalDays:          intOr(v, "total-days", 7),
		QuestionsPerDay:    intOr(v, "questions-per-day", 40),
		CORSOrigins:        sliceOr(v, "cors-origins", []string{"http://localhost:3000"}),
		AdminUser:          stringOr(v, "admin-user", "admin"),
		AdminPassword:      v.GetString("admin-password"),
		SeedDemo:           v.GetBool("seed-demo"),
		LogLevel:           stringOr(v, "log-level", "info"),
		LogFormat:          stringOr(v, "log-format", "text"),
	}
}

func stringOr(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}

func intOr(v *viper.Viper, key string, def int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}

func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func sliceOr(v *viper.Viper, key string, def []string) []string {
	if s := v.GetStringSlice(key); len(s) > 0 {
		return s
	}
	return def
}
