package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/umarovdev/konkurs-backend/internal/config"
	"github.com/umarovdev/konkurs-backend/internal/handler"
	appmw "github.com/umarovdev/konkurs-backend/internal/middleware"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"github.com/umarovdev/konkurs-backend/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	e      *echo.Echo
	ledger repository.LedgerRepository
	subs   service.SubscriptionService
}

func New(db *gorm.DB, cfg *config.Config, log *zap.Logger, oracle service.MembershipOracle, sender service.MessageSender) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	ledgerRepo := repository.NewLedgerRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	giftRepo := repository.NewGiftRepository(db)

	awardSvc := service.NewAwardService(ledgerRepo, cfg.JoinRequestPoints, cfg.ReferralPoints, log)
	userSvc := service.NewUserService(ledgerRepo, awardSvc)
	subSvc := service.NewSubscriptionService(channelRepo, ledgerRepo, awardSvc, oracle, cfg.OracleTimeout, log)
	contestSvc := service.NewContestService(ledgerRepo, log)
	leaderboardSvc := service.NewLeaderboardService(ledgerRepo)
	broadcastSvc := service.NewBroadcastService(ledgerRepo, sender, log)

	eventHandler := handler.NewEventHandler(userSvc, awardSvc, subSvc)
	userHandler := handler.NewUserHandler(leaderboardSvc, userSvc, channelRepo, giftRepo)
	adminHandler := handler.NewAdminHandler(contestSvc, broadcastSvc, leaderboardSvc, channelRepo, giftRepo)

	adminMw := appmw.NewAdminMiddleware(cfg.AdminToken)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")

	events := api.Group("/events")
	events.POST("/user-seen", eventHandler.UserSeen)
	events.POST("/join-request", eventHandler.JoinRequest)
	events.POST("/check-subscription", eventHandler.CheckSubscription)
	events.POST("/referral-signup", eventHandler.ReferralSignup)

	api.GET("/users/:id", userHandler.Get)
	api.GET("/users/:id/rank", userHandler.Rank)
	api.GET("/leaderboard", userHandler.Leaderboard)
	api.GET("/channels", userHandler.Channels)
	api.GET("/gifts", userHandler.Gifts)

	admin := api.Group("/admin", adminMw.RequireAdmin)
	admin.POST("/contest/new", adminHandler.NewContest)
	admin.POST("/reset", adminHandler.Reset)
	admin.GET("/contest", adminHandler.ActiveContest)
	admin.POST("/channels", adminHandler.UpsertChannel)
	admin.DELETE("/channels/:id", adminHandler.DeleteChannel)
	admin.POST("/gifts", adminHandler.CreateGift)
	admin.DELETE("/gifts/:id", adminHandler.DeleteGift)
	admin.POST("/broadcast", adminHandler.Broadcast)
	admin.GET("/top", adminHandler.Top)

	return &Server{e: e, ledger: ledgerRepo, subs: subSvc}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Subscriptions exposes the verifier for the re-check worker.
func (s *Server) Subscriptions() service.SubscriptionService {
	return s.subs
}

// Ledger exposes the store handle for the re-check worker.
func (s *Server) Ledger() repository.LedgerRepository {
	return s.ledger
}
