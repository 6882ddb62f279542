package db

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/logger"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
)

const sqliteParams = "_busy_timeout=5000&_txlock=immediate&_foreign_keys=1"

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured primary store and migrates the schema.
// A non-empty dsnURL replaces the DSN composed from conf.
func Open(conf *config.DatabaseConfig, dsnURL string) (*gorm.DB, error) {
	dsn := dsnURL
	if dsn == "" {
		dsn = DSN(conf)
	}

	var dialector gorm.Dialector
	switch conf.Driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(zap.L()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}
	if conf.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

func OpenPostgresWithURL(dsnURL string) (*gorm.DB, error) {
	return Open(&config.DatabaseConfig{Driver: DriverPostgres}, dsnURL)
}

// DSN composes the driver-specific connection string.
func DSN(conf *config.DatabaseConfig) string {
	switch conf.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			conf.User, conf.Password, conf.Host, conf.Port, conf.Name)
	case DriverSQLite:
		// Writers take the lock at BEGIN so concurrent transactions queue instead of failing.
		if strings.Contains(conf.Name, "?") {
			return conf.Name
		}
		return "file:" + conf.Name + "?" + sqliteParams
	default:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Host + ":" + conf.Port,
			Path:     conf.Name,
			RawQuery: "sslmode=" + conf.SSLMode,
		}
		return u.String()
	}
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB -> %w", err)
	}

	return sqlDB.Close()
}
