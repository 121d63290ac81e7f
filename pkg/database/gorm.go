package database

import (
	"log"
	"net/url"
	"os"
	"regexp"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tune the connection. Zero pool sizes keep the defaults (10 idle,
// 100 open).
type Options struct {
	SQLEcho      bool
	MaxIdleConns int
	MaxOpenConns int
}

func getLogger(echo bool) logger.Interface {
	level := logger.Warn
	if echo {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	maxIdle, maxOpen := opts.MaxIdleConns, opts.MaxOpenConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	if maxOpen <= 0 {
		maxOpen = 100
	}

	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// NewGormDBFromDSN opens Postgres through pgx. Driver errors are translated
// into gorm's portable errors (ErrDuplicatedKey, ...).
func NewGormDBFromDSN(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(NormalizeDSN(dsn)), &gorm.Config{
		Logger:         getLogger(opts.SQLEcho),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, opts); err != nil {
		return nil, err
	}

	return db, nil
}

// Ping runs SELECT 1, the readiness probe of the service.
func Ping(db *gorm.DB) error {
	var one int
	return db.Raw("SELECT 1").Scan(&one).Error
}

var driverSuffix = regexp.MustCompile(`^(postgres(?:ql)?)\+[A-Za-z0-9_]+://`)

// NormalizeDSN strips driver qualifiers such as "+asyncpg" or "+psycopg" so
// URLs shared with other tooling can be used unchanged.
func NormalizeDSN(dsn string) string {
	return driverSuffix.ReplaceAllString(dsn, "$1://")
}

var kvPassword = regexp.MustCompile(`(password=)(\S+)`)

// MaskDSN hides the password of a URL or key=value DSN for logging.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
			masked, _ := url.PathUnescape(u.String())
			return masked
		}
		return dsn
	}
	return kvPassword.ReplaceAllString(dsn, "${1}***")
}
