package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmflow/shootplan-api/internal/dto"
	"github.com/filmflow/shootplan-api/internal/optimizer"
	"github.com/filmflow/shootplan-api/internal/service"
	appErrors "github.com/filmflow/shootplan-api/pkg/errors"
)

type optimizerServiceMock struct {
	submitted   dto.OptimizeScheduleRequest
	cancelled   string
	getErr      error
	exportedFmt string
}

func (m *optimizerServiceMock) Submit(_ context.Context, req dto.OptimizeScheduleRequest) (*dto.OptimizeRunResponse, error) {
	m.submitted = req
	return &dto.OptimizeRunResponse{RunID: "run-1", ProductionID: req.ProductionID, State: "queued"}, nil
}

func (m *optimizerServiceMock) Get(_ context.Context, runID string) (*dto.RunStatusResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.RunStatusResponse{RunID: runID, State: "completed"}, nil
}

func (m *optimizerServiceMock) Cancel(_ context.Context, runID string) error {
	m.cancelled = runID
	return nil
}

func (m *optimizerServiceMock) Save(_ context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error) {
	return &dto.SaveScheduleResponse{RunID: req.RunID, ShootingDayIDs: []string{"day-1"}}, nil
}

func (m *optimizerServiceMock) Export(_ context.Context, runID, format string) (*service.ExportFile, error) {
	m.exportedFmt = format
	return &service.ExportFile{Content: []byte("Day,Date\n"), ContentType: "text/csv", Filename: "schedule-" + runID + ".csv"}, nil
}

func (m *optimizerServiceMock) PredictDuration(_ context.Context, _ dto.PredictDurationRequest) (*optimizer.DurationEstimate, error) {
	return &optimizer.DurationEstimate{Minutes: 175, LowMinutes: 140, HighMinutes: 210, ConfidencePct: 20}, nil
}

func (m *optimizerServiceMock) RecommendOrder(_ context.Context, req dto.SceneOrderRequest) (*dto.SceneOrderResponse, error) {
	order := make([]dto.SceneOrderItem, len(req.SceneIDs))
	for i, id := range req.SceneIDs {
		order[i] = dto.SceneOrderItem{Position: i + 1, SceneID: id}
	}
	return &dto.SceneOrderResponse{Order: order}, nil
}

func performJSON(t *testing.T, handlerFn gin.HandlerFunc, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handlerFn(c)
	return w
}

func TestOptimizeHandlerSubmitAccepted(t *testing.T) {
	mockSvc := &optimizerServiceMock{}
	handler := &OptimizeHandler{service: mockSvc}

	payload := []byte(`{"productionId":"prod-1","startDate":"2026-09-07"}`)
	w := performJSON(t, handler.Submit, http.MethodPost, "/schedule/optimize", payload)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "prod-1", mockSvc.submitted.ProductionID)
}

func TestOptimizeHandlerSubmitMalformedBody(t *testing.T) {
	handler := &OptimizeHandler{service: &optimizerServiceMock{}}

	w := performJSON(t, handler.Submit, http.MethodPost, "/schedule/optimize", []byte(`{"productionId":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeHandlerGetNotFound(t *testing.T) {
	mockSvc := &optimizerServiceMock{getErr: appErrors.ErrRunNotFound}
	handler := &OptimizeHandler{service: mockSvc}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/schedule/optimize/:id", handler.Get)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/optimize/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptimizeHandlerCancel(t *testing.T) {
	mockSvc := &optimizerServiceMock{}
	handler := &OptimizeHandler{service: mockSvc}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/schedule/optimize/:id", handler.Cancel)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/schedule/optimize/run-9", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "run-9", mockSvc.cancelled)
}

func TestOptimizeHandlerExportDefaultsToCSV(t *testing.T) {
	mockSvc := &optimizerServiceMock{}
	handler := &OptimizeHandler{service: mockSvc}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/schedule/optimize/:id/export", handler.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/schedule/optimize/run-1/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.exportedFmt)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule-run-1.csv")
}

func TestOptimizeHandlerPredictDuration(t *testing.T) {
	handler := &OptimizeHandler{service: &optimizerServiceMock{}}

	payload := []byte(`{"estimatedPages":2,"intExt":"EXT","timeOfDay":"DAY","castIds":["c1"]}`)
	w := performJSON(t, handler.PredictDuration, http.MethodPost, "/schedule/predict-duration", payload)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data optimizer.DurationEstimate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 175, envelope.Data.Minutes)
}

func TestOptimizeHandlerSceneOrder(t *testing.T) {
	handler := &OptimizeHandler{service: &optimizerServiceMock{}}

	payload := []byte(`{"sceneIds":["s2","s1"],"weatherGood":true}`)
	w := performJSON(t, handler.SceneOrder, http.MethodPost, "/schedule/scene-order", payload)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.SceneOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Order, 2)
	assert.Equal(t, "s2", envelope.Data.Order[0].SceneID)
}
