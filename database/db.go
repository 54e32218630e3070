// Package database manages the sqlite database connection and schema for
// the harmonia server.
package database

import (
	"io/fs"
	"log"
	"os"
	"path"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harmonia-media/harmonia/config"
	"github.com/harmonia-media/harmonia/database/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Server{},
		&model.ServerFolder{},
		&model.ServerPermission{},
		&model.ServerFolderPermission{},
		&model.RefreshToken{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initAdminUser seeds an enabled admin account into an empty users table so
// a fresh install has someone who can enable registered accounts.
func initAdminUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if empty {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), config.GetBcryptCost())
		if err != nil {
			return err
		}
		user := &model.User{
			Id:       uuid.NewString(),
			Username: defaultAdminUsername,
			Password: string(hash),
			DeviceId: defaultAdminUsername + "_default",
			Enabled:  true,
			IsAdmin:  true,
		}
		return db.Create(user).Error
	}
	return nil
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := initAdminUser(); err != nil {
		return err
	}

	return nil
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// Checkpoint flushes the WAL into the main database file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
