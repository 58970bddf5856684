package simulation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
	"lineage-backend/pkg/observability"

	"go.uber.org/zap"
)

// goldenAngle spreads initial placements so no two nodes start on the same
// ray from the center
const goldenAngle = math.Pi * (3 - 2.23606797749979) // π(3−√5)

const initialRadiusStep = 10.0

// Engine computes 2-D positions for every unpinned node with a force-directed
// model: link springs, Barnes-Hut charge repulsion, a centroid pull and
// collision resolution, cooled by a geometrically decaying alpha.
//
// Per tick: capture the working set under the graph read lock, place any
// nodes that have no coordinates yet, accumulate link and charge forces into
// velocities, integrate with velocity decay, apply the center pull and
// collision nudges, then commit the whole tick under the graph write lock.
// Readers always see the last fully-committed tick.
//
// Given identical initial state and the same seed, successive runs converge
// to the same layout within floating-point tolerance: all iteration is in
// insertion order and the only randomness is the seeded jiggle stream.
type Engine struct {
	graph   *aggregates.Graph
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	cfg     Config
	alpha   float64
	ticks   int
	rng     *rand.Rand
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewEngine creates a simulation engine over the given graph
func NewEngine(graph *aggregates.Graph, cfg Config, logger *zap.Logger, metrics *observability.Metrics) (*Engine, error) {
	if graph == nil {
		return nil, pkgerrors.NewValidation("graph is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		graph:   graph,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
		alpha:   cfg.Alpha,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Start launches the background tick loop. The loop idles once converged and
// resumes on Reheat; it halts cleanly on ctx cancellation or Stop, always
// after the in-flight tick has committed.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return pkgerrors.NewValidation("simulation already running")
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	stop, done := e.stopCh, e.doneCh
	interval := e.cfg.TickInterval
	e.mu.Unlock()

	go func() {
		// The loop may exit on ctx cancellation without a Stop call; the
		// running flag is released here so Start works again. The channel
		// comparison guards against clobbering a newer loop.
		defer func() {
			e.mu.Lock()
			if e.stopCh == stop {
				e.running = false
			}
			e.mu.Unlock()
			close(done)
		}()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				e.Tick()
			}
		}
	}()
	return nil
}

// Stop signals the loop and waits for the in-flight tick to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()
	<-done
}

// Tick runs one simulation step. Returns false when the simulation is
// converged (or the tick ceiling is hit) and no step was taken.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

// RunToConvergence ticks synchronously until alpha cools below the threshold,
// the tick ceiling is hit, or ctx is cancelled. Returns the number of ticks
// executed.
func (e *Engine) RunToConvergence(ctx context.Context) int {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n
		default:
		}
		e.mu.Lock()
		ok := e.tickLocked()
		e.mu.Unlock()
		if !ok {
			return n
		}
		n++
	}
}

// Reheat resets alpha to its initial value, resuming the cooling cycle.
// Called on every structural mutation and on user-initiated restarts.
func (e *Engine) Reheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alpha = e.cfg.Alpha
	e.ticks = 0
}

// Alpha returns the current temperature
func (e *Engine) Alpha() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha
}

// Converged reports whether the simulation has cooled below the threshold
func (e *Engine) Converged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha < e.cfg.AlphaMin
}

// Config returns the active configuration
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig swaps force parameters at runtime (dynamic config tuning). A
// changed TickInterval takes effect on the next Start.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	return nil
}

// StartDrag pins a node at drag-start
func (e *Engine) StartDrag(nodeID valueobjects.NodeID) error {
	if err := e.graph.PinNode(nodeID); err != nil {
		return err
	}
	e.raiseAlpha()
	return nil
}

// Drag overrides the node's position at drag-move
func (e *Engine) Drag(nodeID valueobjects.NodeID, x, y float64) error {
	if err := e.graph.OverridePosition(nodeID, x, y); err != nil {
		return err
	}
	e.raiseAlpha()
	return nil
}

// EndDrag unpins a node at drag-end, handing it back to the simulation
func (e *Engine) EndDrag(nodeID valueobjects.NodeID) error {
	if err := e.graph.UnpinNode(nodeID); err != nil {
		return err
	}
	e.raiseAlpha()
	return nil
}

// raiseAlpha lifts the temperature to the drag floor so the layout responds
// to interaction without a full reheat
func (e *Engine) raiseAlpha() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.alpha < e.cfg.DragAlpha {
		e.alpha = e.cfg.DragAlpha
		e.ticks = 0
	}
}

// tickLocked runs one step; callers hold e.mu.
func (e *Engine) tickLocked() bool {
	if e.alpha < e.cfg.AlphaMin {
		return false
	}
	if e.cfg.MaxTicks > 0 && e.ticks >= e.cfg.MaxTicks {
		return false
	}

	start := time.Now()
	states, edgeRefs := e.graph.SimulationState()
	if len(states) == 0 {
		e.alpha *= 1 - e.cfg.AlphaDecay
		return true
	}

	nodes := make([]*simNode, len(states))
	index := make(map[valueobjects.NodeID]int, len(states))
	for i, s := range states {
		nodes[i] = &simNode{
			index:  i,
			id:     s.ID,
			x:      s.X,
			y:      s.Y,
			vx:     s.VX,
			vy:     s.VY,
			radius: s.Radius,
			pinned: s.Pinned,
		}
		index[s.ID] = i
		if !s.Positioned {
			e.placeNode(nodes[i], i)
		}
	}

	edges := make([]simEdge, 0, len(edgeRefs))
	for _, ref := range edgeRefs {
		si, ok := index[ref.Source]
		if !ok {
			continue
		}
		ti, ok := index[ref.Target]
		if !ok {
			continue
		}
		edges = append(edges, simEdge{source: si, target: ti, weight: ref.Weight})
	}

	jiggle := func() float64 { return (e.rng.Float64() - 0.5) * 1e-6 }

	applyLinkForce(nodes, edges, e.alpha, e.cfg.LinkDistance, e.cfg.LinkStiffness, jiggle)

	qt := newQuadtree(nodes)
	for _, n := range nodes {
		if n.pinned {
			continue
		}
		qt.applyCharge(n, e.cfg.Theta, e.cfg.RepulsionStrength, e.alpha, jiggle)
	}

	integrate(nodes, e.cfg.VelocityDecay)
	applyCenterForce(nodes, e.cfg.CenterX, e.cfg.CenterY, e.cfg.CenterStrength)

	qt = newQuadtree(nodes)
	applyCollision(nodes, qt, e.cfg.CollisionPadding, jiggle)

	updates := make([]aggregates.LayoutUpdate, 0, len(nodes))
	for _, n := range nodes {
		if !finite(n.x) || !finite(n.y) || !finite(n.vx) || !finite(n.vy) {
			// Numerical instability is fatal to this node's update only:
			// discard it, keep the last committed state.
			e.logger.Warn("discarding non-finite layout update",
				zap.String("node_id", n.id.String()))
			continue
		}
		updates = append(updates, aggregates.LayoutUpdate{
			ID: n.id, X: n.x, Y: n.y, VX: n.vx, VY: n.vy,
		})
	}
	e.graph.CommitLayout(updates)

	e.alpha *= 1 - e.cfg.AlphaDecay
	e.ticks++
	e.metrics.ObserveTick(time.Since(start), e.alpha)
	e.metrics.SetGraphSize(len(states), len(edgeRefs))
	return true
}

// placeNode assigns deterministic initial coordinates on a phyllotaxis
// spiral, indexed by the node's insertion position
func (e *Engine) placeNode(n *simNode, i int) {
	radius := initialRadiusStep * math.Sqrt(0.5+float64(i))
	angle := float64(i) * goldenAngle
	n.x = e.cfg.CenterX + radius*math.Cos(angle)
	n.y = e.cfg.CenterY + radius*math.Sin(angle)
	n.vx = 0
	n.vy = 0
}
