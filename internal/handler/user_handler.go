package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"github.com/umarovdev/konkurs-backend/internal/service"
)

// UserHandler serves the read-only presentation queries: snapshots,
// leaderboard, rank, channel list and gift catalog.
type UserHandler struct {
	leaderboard service.LeaderboardService
	users       service.UserService
	channels    repository.ChannelRepository
	gifts       repository.GiftRepository
}

func NewUserHandler(leaderboard service.LeaderboardService, users service.UserService, channels repository.ChannelRepository, gifts repository.GiftRepository) *UserHandler {
	return &UserHandler{leaderboard: leaderboard, users: users, channels: channels, gifts: gifts}
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid user id"))
	}
	snap, err := h.leaderboard.Snapshot(c.Request().Context(), id)
	if err != nil {
		if isNotFound(err) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *UserHandler) Rank(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid user id"))
	}
	rank, err := h.leaderboard.Rank(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rank": rank})
}

func (h *UserHandler) Leaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	top, err := h.leaderboard.Top(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": top})
}

func (h *UserHandler) Channels(c echo.Context) error {
	list, err := h.channels.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"channels": list})
}

type giftView struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
	Affordable     *bool  `json:"affordable,omitempty"`
}

func (h *UserHandler) Gifts(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.gifts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}

	var points *int
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid user_id"))
		}
		u, err := h.users.Get(ctx, id)
		if err == nil {
			points = &u.Points
		} else if !isNotFound(err) {
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
		}
	}

	views := make([]giftView, 0, len(list))
	for _, g := range list {
		v := giftView{ID: g.ID, Name: g.Name, PointsRequired: g.PointsRequired}
		if points != nil {
			ok := *points >= g.PointsRequired
			v.Affordable = &ok
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"gifts": views})
}
