package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/optimizer"
	"github.com/filmflow/shootplan-api/internal/service"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
	"github.com/filmflow/shootplan-api/pkg/response"
)

type scheduleOptimizer interface {
	Submit(ctx context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeRunResponse, error)
	Get(ctx context.Context, runID string) (*dto.RunStatusResponse, error)
	Cancel(ctx context.Context, runID string) error
	Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error)
	Export(ctx context.Context, runID, format string) (*service.ExportFile, error)
	PredictDuration(ctx context.Context, req dto.PredictDurationRequest) (*optimizer.DurationEstimate, error)
	RecommendOrder(ctx context.Context, req dto.SceneOrderRequest) (*dto.SceneOrderResponse, error)
}

// OptimizeHandler exposes the schedule optimization endpoints.
type OptimizeHandler struct {
	service scheduleOptimizer
}

// NewOptimizeHandler constructs the handler.
func NewOptimizeHandler(svc *service.OptimizeService) *OptimizeHandler {
	return &OptimizeHandler{service: svc}
}

// Submit godoc
// @Summary Start a shoot-day optimization run
// @Description Solving happens on a background worker; poll the returned run id for the schedule.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeScheduleRequest true "Optimize schedule payload"
// @Success 202 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *OptimizeHandler) Submit(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
		return
	}
	resp, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Get godoc
// @Summary Poll an optimization run
// @Tags Schedule
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/optimize/{id} [get]
func (h *OptimizeHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Cancel godoc
// @Summary Cancel an in-flight optimization run
// @Tags Schedule
// @Produce json
// @Param id path string true "Run ID"
// @Success 204
// @Router /schedule/optimize/{id} [delete]
func (h *OptimizeHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Save godoc
// @Summary Persist a completed run as shooting days
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 201 {object} response.Envelope
// @Router /schedule/optimize/{id}/save [post]
func (h *OptimizeHandler) Save(c *gin.Context) {
	resp, err := h.service.Save(c.Request.Context(), dto.SaveScheduleRequest{RunID: c.Param("id")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Export godoc
// @Summary Export a completed run as CSV or a PDF call sheet
// @Tags Schedule
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /schedule/optimize/{id}/export [get]
func (h *OptimizeHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// PredictDuration godoc
// @Summary Estimate how long a scene takes to shoot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.PredictDurationRequest true "Prediction payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/predict-duration [post]
func (h *OptimizeHandler) PredictDuration(c *gin.Context) {
	var req dto.PredictDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid prediction payload"))
		return
	}
	estimate, err := h.service.PredictDuration(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, estimate, nil)
}

// SceneOrder godoc
// @Summary Recommend a within-day shooting order
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SceneOrderRequest true "Scene order payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/scene-order [post]
func (h *OptimizeHandler) SceneOrder(c *gin.Context) {
	var req dto.SceneOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid order payload"))
		return
	}
	resp, err := h.service.RecommendOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
