package optimizer

import (
	"context"
	"time"
)

// Status reports how a schedule was obtained.
type Status string

const (
	// StatusOptimal means the search space was exhausted and the incumbent
	// is provably the cheapest assignment.
	StatusOptimal Status = "optimal"
	// StatusFeasible means a valid assignment was found but the time budget
	// or a cancellation stopped the proof of optimality.
	StatusFeasible Status = "feasible"
	// StatusInfeasible means no assignment satisfies the hard constraints
	// within the horizon.
	StatusInfeasible Status = "infeasible"
	// StatusTimedOut means the budget expired before any incumbent existed.
	StatusTimedOut Status = "timed_out"
	// StatusHeuristic marks a schedule produced by the greedy fallback.
	StatusHeuristic Status = "heuristic"
)

// solution is the raw solver outcome before extraction.
type solution struct {
	assignment map[string]int
	objective  float64
	status     Status
	nodes      int64
	elapsed    time.Duration
	cancelled  bool
}

const nodeCheckInterval = 256

// searchState carries the mutable bookkeeping of the depth-first
// branch-and-bound walk.
type searchState struct {
	m         *assignmentModel
	assign    []int
	remaining []float64
	// dayLocs[d] counts scenes per location on day d; the key set is the
	// day's distinct-location set used for the change penalty.
	dayLocs []map[string]int

	cost       float64
	bestCost   float64
	bestAssign []int
	found      bool

	// suffixMin[i] is an admissible lower bound on the cost contributed by
	// scenes i..n-1, used for pruning.
	suffixMin []float64

	nodes    int64
	deadline time.Time
	ctx      context.Context
	aborted  bool
}

// solve runs bounded branch-and-bound over the assignment model. The wall
// clock budget and the context are both honored; on expiry the best
// incumbent found so far is kept.
func solve(ctx context.Context, m *assignmentModel, budget time.Duration) *solution {
	start := time.Now()
	n := len(m.scenes)

	st := &searchState{
		m:         m,
		assign:    make([]int, n),
		remaining: make([]float64, m.days),
		dayLocs:   make([]map[string]int, m.days),
		suffixMin: make([]float64, n+1),
		ctx:       ctx,
	}
	for i := range st.assign {
		st.assign[i] = -1
	}
	for d := 0; d < m.days; d++ {
		st.remaining[d] = m.cfg.MaxPagesPerDay
		st.dayLocs[d] = make(map[string]int)
	}
	if budget > 0 {
		st.deadline = start.Add(budget)
	}

	for i := n - 1; i >= 0; i-- {
		st.suffixMin[i] = st.suffixMin[i+1] + st.minIncrement(i)
	}

	st.search(0)

	sol := &solution{
		nodes:     st.nodes,
		elapsed:   time.Since(start),
		cancelled: ctx.Err() != nil,
	}
	switch {
	case st.aborted && st.found:
		sol.status = StatusFeasible
	case st.aborted:
		sol.status = StatusTimedOut
	case st.found:
		sol.status = StatusOptimal
	default:
		sol.status = StatusInfeasible
	}
	if st.found {
		sol.objective = st.bestCost
		sol.assignment = make(map[string]int, n)
		for i, d := range st.bestAssign {
			sol.assignment[m.scenes[i].ID] = d
		}
	}
	return sol
}

func (st *searchState) search(i int) {
	if st.aborted {
		return
	}
	st.nodes++
	if st.nodes%nodeCheckInterval == 0 && st.expired() {
		st.aborted = true
		return
	}

	if i == len(st.m.scenes) {
		if !st.found || st.cost < st.bestCost {
			st.found = true
			st.bestCost = st.cost
			st.bestAssign = append(st.bestAssign[:0], st.assign...)
		}
		return
	}

	if st.found && st.cost+st.suffixMin[i] >= st.bestCost {
		return
	}

	for _, d := range st.m.allowedDays[i] {
		if st.remaining[d] < st.m.pages[i] {
			continue
		}
		delta := st.place(i, d)
		st.search(i + 1)
		st.unplace(i, d, delta)
		if st.aborted {
			return
		}
	}
}

// place assigns scene i to day d, returning the incremental objective
// delta so unplace can undo it exactly.
func (st *searchState) place(i, d int) float64 {
	m := st.m
	scene := m.scenes[i]
	delta := m.setupCost[i]

	if scene.IsExterior() {
		delta += m.exteriorRisk[d]
	}

	for _, j := range m.coLocated[i] {
		if other := st.assign[j]; other >= 0 && abs(other-d) <= m.cfg.ProximityWindowDays {
			delta -= m.cfg.ProximityBonus
		}
	}

	// A location newly present on day d pays the change penalty against
	// every distinct other location on the adjacent days.
	loc := scene.LocationID
	if st.dayLocs[d][loc] == 0 {
		delta += st.adjacencyPenalty(d, loc)
	}

	st.dayLocs[d][loc]++
	st.remaining[d] -= m.pages[i]
	st.assign[i] = d
	st.cost += delta
	return delta
}

func (st *searchState) unplace(i, d int, delta float64) {
	loc := st.m.scenes[i].LocationID
	st.cost -= delta
	st.assign[i] = -1
	st.remaining[d] += st.m.pages[i]
	st.dayLocs[d][loc]--
	if st.dayLocs[d][loc] == 0 {
		delete(st.dayLocs[d], loc)
	}
}

func (st *searchState) adjacencyPenalty(d int, loc string) float64 {
	var pairs int
	if d > 0 {
		for other := range st.dayLocs[d-1] {
			if other != loc {
				pairs++
			}
		}
	}
	if d+1 < st.m.days {
		for other := range st.dayLocs[d+1] {
			if other != loc {
				pairs++
			}
		}
	}
	return float64(pairs) * st.m.cfg.LocationChangePenalty
}

// minIncrement is the cheapest the scene could possibly cost: mandatory
// setup, the best-case weather penalty, and full proximity credit. The
// optimism keeps the suffix bound admissible.
func (st *searchState) minIncrement(i int) float64 {
	m := st.m
	inc := m.setupCost[i]
	if m.scenes[i].IsExterior() {
		best := -1.0
		for _, d := range m.allowedDays[i] {
			if best < 0 || m.exteriorRisk[d] < best {
				best = m.exteriorRisk[d]
			}
		}
		if best > 0 {
			inc += best
		}
	}
	inc -= float64(len(m.coLocated[i])) * m.cfg.ProximityBonus
	return inc
}

func (st *searchState) expired() bool {
	if st.ctx.Err() != nil {
		return true
	}
	return !st.deadline.IsZero() && time.Now().After(st.deadline)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
