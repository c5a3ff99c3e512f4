package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/thereayou/groupchat/internal/config"
	"github.com/thereayou/groupchat/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect открывает postgres, если задан DATABASE_URL, иначе sqlite файл
func Connect(cfg config.DBConfig) (*Database, error) {
	var dialector gorm.Dialector
	if cfg.URL != "" {
		dialector = postgres.Open(cfg.URL)
	} else {
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.URL == "" {
		// sqlite допускает одного писателя
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return NewDatabase(db), nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.Group{},
		&models.GroupMember{},
		&models.DirectMessage{},
		&models.GroupMessage{},
	)
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
