package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/service"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
	"github.com/filmflow/shootplan-api/pkg/response"
)

// ShootingDayHandler exposes the persisted schedule.
type ShootingDayHandler struct {
	service *service.ShootingDayService
}

// NewShootingDayHandler constructs the handler.
func NewShootingDayHandler(svc *service.ShootingDayService) *ShootingDayHandler {
	return &ShootingDayHandler{service: svc}
}

// List godoc
// @Summary List saved shooting days
// @Tags ShootingDays
// @Produce json
// @Param productionId query string true "Production ID"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /shooting-days [get]
func (h *ShootingDayHandler) List(c *gin.Context) {
	var query dto.ShootingDayQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	days, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, pagination)
}

// Get godoc
// @Summary Fetch one saved shooting day
// @Tags ShootingDays
// @Produce json
// @Param id path string true "Shooting day ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shooting-days/{id} [get]
func (h *ShootingDayHandler) Get(c *gin.Context) {
	day, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// Scenes godoc
// @Summary List the ordered scenes of one shooting day
// @Tags ShootingDays
// @Produce json
// @Param id path string true "Shooting day ID"
// @Success 200 {object} response.Envelope
// @Router /shooting-days/{id}/scenes [get]
func (h *ShootingDayHandler) Scenes(c *gin.Context) {
	rows, err := h.service.Scenes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RecordActual godoc
// @Summary Record the actual duration of a shot scene
// @Tags ShootingDays
// @Accept json
// @Produce json
// @Param id path string true "Shooting day ID"
// @Param sceneId path string true "Scene ID"
// @Param payload body dto.RecordSceneActualRequest true "Actual duration"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shooting-days/{id}/scenes/{sceneId}/actual [post]
func (h *ShootingDayHandler) RecordActual(c *gin.Context) {
	var req dto.RecordSceneActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sample, err := h.service.RecordActual(c.Request.Context(), c.Param("id"), c.Param("sceneId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sample)
}

// History godoc
// @Summary List recorded scene durations for predictor recalibration
// @Tags ShootingDays
// @Produce json
// @Param productionId query string true "Production ID"
// @Param limit query int false "Max samples (newest first)"
// @Success 200 {object} response.Envelope
// @Router /duration-history [get]
func (h *ShootingDayHandler) History(c *gin.Context) {
	var query dto.DurationHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	samples, err := h.service.History(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, samples, nil)
}
