package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"immofin-backend/internal/finance"
	"immofin-backend/internal/score"
)

type Config struct {
	AppPort  string
	LogLevel string

	// DBDriver selects the snapshot backend: sqlite (local, default)
	// or mysql (hosted).
	DBDriver   string
	SQLitePath string
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string

	// RedisAddr empty means in-process change bus only.
	RedisAddr string
	RedisDB   int

	SnapshotKey  string
	TuningPath   string
	IdempTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	// .env is a local convenience; absence is not an error.
	_ = godotenv.Load()

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		SQLitePath: getenv("SQLITE_PATH", "immofin.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "immofin"),
		MySQLUser:  getenv("MYSQL_USER", "immofin"),
		MySQLPass:  getenv("MYSQL_PASS", "immofin"),

		RedisAddr: getenv("REDIS_ADDR", ""),

		SnapshotKey:  getenv("SNAPSHOT_KEY", "immofin:banque:v1"),
		TuningPath:   getenv("TUNING_PATH", ""),
		IdempTTLSecs: 300,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.SnapshotKey == "" {
		return errors.New("missing SNAPSHOT_KEY")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// Tuning is the committee's adjustable surface: decision thresholds,
// pillar weights and grade cut-points. Unset fields keep the defaults.
type Tuning struct {
	Thresholds finance.Thresholds `yaml:"thresholds"`
	Score      score.Config       `yaml:"score"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Thresholds: finance.DefaultThresholds(),
		Score:      score.DefaultConfig(),
	}
}
