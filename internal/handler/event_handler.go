package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/umarovdev/konkurs-backend/internal/service"
)

// EventHandler accepts the inbound triggers from the bot transport:
// user-seen, join requests, explicit subscription checks and
// referral-bearing signups.
type EventHandler struct {
	users  service.UserService
	awards service.AwardService
	subs   service.SubscriptionService
}

func NewEventHandler(users service.UserService, awards service.AwardService, subs service.SubscriptionService) *EventHandler {
	return &EventHandler{users: users, awards: awards, subs: subs}
}

type userSeenRequest struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	ReferrerID *int64 `json:"referrer_id,omitempty"`
}

func (h *EventHandler) UserSeen(c echo.Context) error {
	var req userSeenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "user_id is required"))
	}
	u, outcome, err := h.users.Seen(c.Request().Context(), req.UserID, req.Username, req.FullName, req.ReferrerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":             u,
		"referral_outcome": outcome,
	})
}

type joinRequestRequest struct {
	UserID    int64  `json:"user_id"`
	ChannelID string `json:"channel_id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
}

func (h *EventHandler) JoinRequest(c echo.Context) error {
	var req joinRequestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == 0 || req.ChannelID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "user_id and channel_id are required"))
	}
	ctx := c.Request().Context()
	if _, _, err := h.users.Seen(ctx, req.UserID, req.Username, req.FullName, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	outcome, err := h.awards.AwardChannelJoin(ctx, req.UserID, req.ChannelID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	u, err := h.users.Get(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"outcome": outcome,
		"points":  u.Points,
	})
}

type checkSubscriptionRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *EventHandler) CheckSubscription(c echo.Context) error {
	var req checkSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "user_id is required"))
	}
	res, err := h.subs.CheckAndAward(c.Request().Context(), req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, res)
}

type referralSignupRequest struct {
	UserID     int64  `json:"user_id"`
	ReferrerID int64  `json:"referrer_id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
}

func (h *EventHandler) ReferralSignup(c echo.Context) error {
	var req referralSignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.UserID == 0 || req.ReferrerID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "user_id and referrer_id are required"))
	}
	u, outcome, err := h.users.Seen(c.Request().Context(), req.UserID, req.Username, req.FullName, &req.ReferrerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":             u,
		"referral_outcome": outcome,
	})
}
