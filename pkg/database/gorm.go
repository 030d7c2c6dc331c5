package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c GormConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

type Option func(*options)

type options struct {
	out      io.Writer
	logLevel logger.LogLevel
}

// WithLogOutput redirects SQL logs. The stdio transport uses this to keep
// stdout reserved for protocol frames.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

func newLogger(o options) logger.Interface {
	return logger.New(
		log.New(o.out, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  o.logLevel,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  o.out == os.Stdout,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDB(cfg GormConfig, opts ...Option) (*gorm.DB, error) {
	return NewGormDBFromDSN(cfg.DSN(), opts...)
}

func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{out: os.Stdout, logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger(o),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}
