package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"github.com/umarovdev/konkurs-backend/internal/service"
)

// resetConfirmPhrase is the literal the caller must echo back before the
// irreversible full reset runs. startNewEpoch has no such guard; it is
// destructive only to the running contest, not to configuration.
const resetConfirmPhrase = "RESET_ALL"

type AdminHandler struct {
	contest   service.ContestService
	broadcast service.BroadcastService
	top       service.LeaderboardService
	channels  repository.ChannelRepository
	gifts     repository.GiftRepository
}

func NewAdminHandler(contest service.ContestService, broadcast service.BroadcastService, top service.LeaderboardService, channels repository.ChannelRepository, gifts repository.GiftRepository) *AdminHandler {
	return &AdminHandler{contest: contest, broadcast: broadcast, top: top, channels: channels, gifts: gifts}
}

func (h *AdminHandler) NewContest(c echo.Context) error {
	id, err := h.contest.StartNewEpoch(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"epoch_id": id})
}

type resetRequest struct {
	Confirm string `json:"confirm"`
}

func (h *AdminHandler) Reset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Confirm != resetConfirmPhrase {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("confirmation_required", "send {\"confirm\":\"RESET_ALL\"} to run the irreversible reset"))
	}
	counts, err := h.contest.ResetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *AdminHandler) ActiveContest(c echo.Context) error {
	ep, err := h.contest.ActiveEpoch(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"epoch_id":   ep.ID,
		"started_at": ep.StartedAt,
	})
}

type channelRequest struct {
	ChatID     string `json:"chat_id"`
	Name       string `json:"name"`
	InviteLink string `json:"invite_link"`
}

func (h *AdminHandler) UpsertChannel(c echo.Context) error {
	var req channelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.ChatID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "chat_id and name are required"))
	}
	ch := &model.Channel{ChatID: req.ChatID, Name: req.Name, InviteLink: req.InviteLink}
	if err := h.channels.Upsert(c.Request().Context(), ch); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *AdminHandler) DeleteChannel(c echo.Context) error {
	chatID := c.Param("id")
	if chatID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "channel id is required"))
	}
	n, err := h.channels.Delete(c.Request().Context(), chatID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "channel not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

type giftRequest struct {
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
}

func (h *AdminHandler) CreateGift(c echo.Context) error {
	var req giftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Name == "" || req.PointsRequired <= 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "name and a positive points_required are required"))
	}
	g := &model.Gift{Name: req.Name, PointsRequired: req.PointsRequired}
	if err := h.gifts.Create(c.Request().Context(), g); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, g)
}

func (h *AdminHandler) DeleteGift(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid gift id"))
	}
	n, err := h.gifts.Delete(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "gift not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

type broadcastRequest struct {
	Text string `json:"text"`
}

func (h *AdminHandler) Broadcast(c echo.Context) error {
	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "text is required"))
	}
	report, err := h.broadcast.Broadcast(c.Request().Context(), req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) Top(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	top, err := h.top.Top(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": top})
}
