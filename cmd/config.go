package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	HTTPPort    string

	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	SQLitePath    string
	DBLogLevel    string
	DBSlowQuery   string
	DBAutoMigrate string

	RedisAddr     string
	RedisPassword string
	RedisDB       string
	LockTTL       string

	ExportDir         string
	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       string
	S3AccessKeyID     string
	S3SecretAccessKey string

	ValidationRetryCron string

	LogLevel  string
	LogFormat string
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Validate checks the settings that cannot fall back to a default.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the %s driver", c.DBDriver)
		}
	case DBDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.S3Bucket == "" && c.ExportDir == "" {
		return fmt.Errorf("either S3_BUCKET or EXPORT_DIR must be set")
	}
	if _, err := c.LockTTLDuration(); err != nil {
		return err
	}
	if _, err := c.SlowQueryThreshold(); err != nil {
		return err
	}
	if _, err := c.RedisDBIndex(); err != nil {
		return err
	}
	return nil
}

// PostgresDSN is the connection string for the postgres driver.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) LockTTLDuration() (time.Duration, error) {
	return parseDuration("LOCK_TTL", c.LockTTL, 2*time.Minute)
}

func (c Config) SlowQueryThreshold() (time.Duration, error) {
	return parseDuration("DB_SLOW_QUERY", c.DBSlowQuery, 200*time.Millisecond)
}

func (c Config) RedisDBIndex() (int, error) {
	if c.RedisDB == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(c.RedisDB)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid REDIS_DB %q", c.RedisDB)
	}
	return n, nil
}

func (c Config) UseS3() bool {
	return c.S3Bucket != ""
}

func (c Config) UseRedis() bool {
	return c.RedisAddr != ""
}

func (c Config) AutoMigrate() bool {
	return isTrue(c.DBAutoMigrate)
}

func (c Config) S3UsePathStyle() bool {
	return isTrue(c.S3PathStyle)
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return d, nil
}

func isTrue(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
