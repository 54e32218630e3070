package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("HARMONIA_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("HARMONIA_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("HARMONIA_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/harmonia"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("HARMONIA_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("HARMONIA_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("HARMONIA_PORT"))
	if err != nil || port <= 0 || port > 65535 {
		return 9321
	}
	return port
}

// GetTokenSecret returns the shared secret used to sign access and refresh
// tokens. The fallback is only suitable for local development.
func GetTokenSecret() []byte {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return []byte(secret)
}

// GetAccessTokenTTL returns the validity window for access tokens.
func GetAccessTokenTTL() time.Duration {
	return getDuration("HARMONIA_ACCESS_TOKEN_TTL", 15*time.Minute)
}

// GetRefreshTokenTTL returns the validity window for refresh tokens.
func GetRefreshTokenTTL() time.Duration {
	return getDuration("HARMONIA_REFRESH_TOKEN_TTL", 30*24*time.Hour)
}

// GetBcryptCost returns the bcrypt work factor for password hashing.
func GetBcryptCost() int {
	cost, err := strconv.Atoi(os.Getenv("HARMONIA_BCRYPT_COST"))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return 12
	}
	return cost
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
