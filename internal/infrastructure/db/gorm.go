package db

import (
	"log"
	"time"

	"loans-service/internal/domain/loan"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormWithDialector opens, tunes the pool and pings. Tests pass a
// dialector over sqlmock.
func OpenGormWithDialector(d gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Info),
		NowFunc:              func() time.Time { return time.Now().UTC() },
		DisableAutomaticPing: true, // pinged below, after the pool is tuned
	}
	db, err := gorm.Open(d, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate creates or updates the loans table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&loan.Loan{}); err != nil {
		return err
	}
	log.Println("gorm: loans schema migrated")
	return nil
}
