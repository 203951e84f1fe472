package optimizer

import (
	"context"

	"go.uber.org/zap"
)

// Optimizer runs the full pipeline: validation, model construction,
// branch-and-bound, the greedy fallback when the solver comes back
// empty, and extraction into ordered day assignments.
type Optimizer struct {
	predictorWeights PredictorWeights
	orderWeights     OrderWeights
	logger           *zap.Logger
}

func New(predictorWeights PredictorWeights, orderWeights OrderWeights, logger *zap.Logger) *Optimizer {
	return &Optimizer{
		predictorWeights: predictorWeights,
		orderWeights:     orderWeights,
		logger:           logger,
	}
}

// Run executes one optimization over the snapshot. Infeasible and
// timed-out-without-incumbent outcomes are recovered through the greedy
// fallback; validation, model-size and horizon errors surface to the
// caller. A cancelled context with no incumbent returns the context
// error.
func (o *Optimizer) Run(ctx context.Context, snap *Snapshot) (*ScheduleResult, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	m, err := buildModel(snap)
	if err != nil {
		return nil, err
	}

	sol := solve(ctx, m, snap.Config.SolverTimeBudget)
	o.logger.Info("solver finished",
		zap.String("production_id", snap.ProductionID),
		zap.String("status", string(sol.status)),
		zap.Int64("nodes", sol.nodes),
		zap.Duration("elapsed", sol.elapsed),
	)

	result := &ScheduleResult{
		ProductionID: snap.ProductionID,
		Status:       sol.status,
		Objective:    sol.objective,
		SolveTime:    sol.elapsed,
		Nodes:        sol.nodes,
	}

	switch sol.status {
	case StatusOptimal, StatusFeasible:
		result.Days = extract(snap, sol.assignment, o.orderWeights)
		return result, nil
	}

	if sol.cancelled {
		return nil, ctx.Err()
	}

	o.logger.Warn("solver returned no schedule, engaging fallback",
		zap.String("production_id", snap.ProductionID),
		zap.String("solver_status", string(sol.status)),
	)
	assignment, err := fallbackSchedule(snap)
	if err != nil {
		return nil, err
	}
	result.Status = StatusHeuristic
	result.Objective = 0
	result.FallbackUsed = true
	result.Days = extract(snap, assignment, o.orderWeights)
	return result, nil
}

// Predictor exposes the configured duration predictor.
func (o *Optimizer) Predictor() *DurationPredictor {
	return NewDurationPredictor(o.predictorWeights)
}

// OrderWeights exposes the configured ordering bonuses.
func (o *Optimizer) OrderWeights() OrderWeights {
	return o.orderWeights
}
