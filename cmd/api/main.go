package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/umarovdev/konkurs-backend/internal/config"
	"github.com/umarovdev/konkurs-backend/internal/db"
	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/server"
	"github.com/umarovdev/konkurs-backend/internal/telegram"
	"github.com/umarovdev/konkurs-backend/internal/worker"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Channel{},
		&model.ContestEpoch{},
		&model.ChannelAward{},
		&model.ReferralAward{},
		&model.Gift{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	tg := telegram.NewClient(cfg.BotToken, nil, logger)
	srv := server.New(conn, cfg, logger, tg, tg)

	if cfg.RecheckInterval > 0 {
		w, err := worker.NewRecheckWorker(srv.Subscriptions(), srv.Ledger(), cfg.RecheckInterval, cfg.RecheckWindow, logger)
		if err != nil {
			log.Fatalf("re-check worker init error: %v", err)
		}
		if err := w.Start(); err != nil {
			log.Fatalf("re-check worker start error: %v", err)
		}
		defer w.Stop()
	}

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
