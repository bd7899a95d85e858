package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/features/raffle/models"
	"raffle-tool-backend/internal/features/raffle/service"
)

type RaffleHandler struct {
	service service.RaffleService
}

func NewRaffleHandler(service service.RaffleService) *RaffleHandler {
	return &RaffleHandler{
		service: service,
	}
}

func (h *RaffleHandler) RegisterRoutes(router *gin.RouterGroup) {
	raffles := router.Group("/raffles")
	{
		raffles.POST("", h.create)
		raffles.GET("", h.list)
		raffles.GET("/:id", h.getByID)
		raffles.GET("/:id/participants", h.getParticipants)
		raffles.POST("/:id/participants", h.addParticipant)
		raffles.GET("/:id/draw", h.draw)
	}
}

// create создает розыгрыш с начальным списком участников
func (h *RaffleHandler) create(c *gin.Context) {
	var input models.RaffleCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	details, err := h.service.CreateRaffle(c.Request.Context(), &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

func (h *RaffleHandler) list(c *gin.Context) {
	raffles, err := h.service.ListRaffles(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, raffles)
}

// getByID возвращает розыгрыш вместе со всеми участниками
func (h *RaffleHandler) getByID(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	details, err := h.service.GetRaffleDetails(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *RaffleHandler) getParticipants(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	participants, err := h.service.ListParticipants(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

func (h *RaffleHandler) addParticipant(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	var input models.ParticipantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	participant, err := h.service.AddParticipant(c.Request.Context(), id, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// draw проводит розыгрыш: ?level=soft|half|hard&invested=true&two_three=true
func (h *RaffleHandler) draw(c *gin.Context) {
	id, ok := raffleID(c)
	if !ok {
		return
	}

	var query models.DrawQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid query"))
		return
	}

	level, ok := models.ParseDrawLevel(query.Level)
	if !ok {
		_ = c.Error(errors.NewInvalidDrawLevelError(query.Level))
		return
	}

	resp, err := h.service.Draw(c.Request.Context(), id, models.DrawOptions{
		Level:    level,
		Invested: isTrue(query.Invested),
		TwoThree: isTrue(query.TwoThree),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// isTrue принимает только "true" без учета регистра, остальное false
func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func raffleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(errors.NewValidationError("id", "Raffle ID must be a positive integer").
			WithDetail("provided_value", c.Param("id")))
		return 0, false
	}
	return id, true
}
