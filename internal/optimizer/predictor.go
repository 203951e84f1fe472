package optimizer

import (
	"math"

	"github.com/filmflow/shootplan-api/internal/models"
)

// PredictorWeights are the per-feature minute contributions of the linear
// duration model.
type PredictorWeights struct {
	MinutesPerPage   float64
	ExteriorMinutes  float64
	NightMinutes     float64
	MinutesPerCast   float64
	MinutesPerShot   float64
	DefaultShotCount int
	ConfidencePct    int
}

// DurationEstimate is a point estimate with a symmetric confidence band.
type DurationEstimate struct {
	Minutes       int `json:"minutes"`
	LowMinutes    int `json:"lowMinutes"`
	HighMinutes   int `json:"highMinutes"`
	ConfidencePct int `json:"confidencePct"`
}

// DurationPredictor scores a scene with a fixed linear model. The model is
// intentionally simple: pages dominate, the remaining features are flat
// adders, so the estimate is monotone in page count by construction.
type DurationPredictor struct {
	weights PredictorWeights
}

func NewDurationPredictor(weights PredictorWeights) *DurationPredictor {
	return &DurationPredictor{weights: weights}
}

// Predict returns the estimated shoot duration for one scene. A scene
// without a shot count uses the default.
func (p *DurationPredictor) Predict(scene models.Scene) DurationEstimate {
	w := p.weights

	shots := w.DefaultShotCount
	if scene.ShotCount != nil {
		shots = *scene.ShotCount
	}

	minutes := scene.EstimatedPages * w.MinutesPerPage
	if scene.IsExterior() {
		minutes += w.ExteriorMinutes
	}
	if scene.IsNight() {
		minutes += w.NightMinutes
	}
	minutes += float64(len(scene.CastIDs)) * w.MinutesPerCast
	minutes += float64(shots) * w.MinutesPerShot

	band := minutes * float64(w.ConfidencePct) / 100
	return DurationEstimate{
		Minutes:       int(math.Round(minutes)),
		LowMinutes:    int(math.Round(minutes - band)),
		HighMinutes:   int(math.Round(minutes + band)),
		ConfidencePct: w.ConfidencePct,
	}
}
