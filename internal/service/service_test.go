package service

import (
	"testing"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLedger(t *testing.T) (repository.LedgerRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&model.User{},
		&model.Channel{},
		&model.ContestEpoch{},
		&model.ChannelAward{},
		&model.ReferralAward{},
		&model.Gift{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return repository.NewLedgerRepository(db), db
}
