package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/umarovdev/konkurs-backend/internal/config"
	"github.com/umarovdev/konkurs-backend/internal/db"
	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"gorm.io/gorm"
)

type seedGift struct {
	Name           string
	PointsRequired int
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Channel{}, &model.Gift{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("gifts already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	gifts := []seedGift{
		{Name: "Telefon", PointsRequired: 1000},
		{Name: "Quloqchin", PointsRequired: 500},
		{Name: "Power bank", PointsRequired: 300},
		{Name: "Termos", PointsRequired: 150},
	}
	giftRepo := repository.NewGiftRepository(gdb)
	for _, g := range gifts {
		if err := giftRepo.Create(ctx, &model.Gift{Name: g.Name, PointsRequired: g.PointsRequired}); err != nil {
			return fmt.Errorf("seed gift %q: %w", g.Name, err)
		}
	}
	log.Printf("seeded %d gifts", len(gifts))
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if os.Getenv("FORCE_SEED") == "true" {
		return true, nil
	}
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Gift{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count gifts: %w", err)
	}
	return cnt == 0, nil
}
