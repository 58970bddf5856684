package simulation

import (
	"math"
	"time"

	pkgerrors "lineage-backend/pkg/errors"
)

// Config holds the force model parameters. Defaults follow the d3-force
// values the rendering side was originally tuned against.
type Config struct {
	// Canvas center the node centroid is pulled toward
	CenterX float64
	CenterY float64
	// CenterStrength scales the centroid pull per tick
	CenterStrength float64

	// LinkDistance is the target separation between connected nodes
	LinkDistance float64
	// LinkStiffness scales the spring force, multiplied by edge weight
	LinkStiffness float64

	// RepulsionStrength scales the inverse-square charge force
	RepulsionStrength float64
	// Theta is the Barnes-Hut approximation threshold
	Theta float64

	// CollisionPadding is added to the radii sum in overlap checks
	CollisionPadding float64

	// Alpha is the initial temperature; AlphaDecay the geometric decay per
	// tick; AlphaMin the convergence threshold
	Alpha      float64
	AlphaDecay float64
	AlphaMin   float64
	// DragAlpha is the floor alpha is raised to on drag interaction
	DragAlpha float64

	// VelocityDecay is the per-tick velocity damping multiplier
	VelocityDecay float64

	// TickInterval drives the background loop
	TickInterval time.Duration
	// MaxTicks is a hard ceiling per heating cycle; 0 means unlimited
	MaxTicks int

	// Seed fixes the tie-breaker stream for reproducible layouts
	Seed int64
}

// DefaultConfig returns the standard force model parameters
func DefaultConfig() Config {
	alphaMin := 0.001
	return Config{
		CenterStrength:    0.1,
		LinkDistance:      60,
		LinkStiffness:     0.1,
		RepulsionStrength: 200,
		Theta:             0.9,
		CollisionPadding:  4,
		Alpha:             1,
		AlphaDecay:        1 - math.Pow(alphaMin, 1.0/300),
		AlphaMin:          alphaMin,
		DragAlpha:         0.3,
		VelocityDecay:     0.6,
		TickInterval:      16 * time.Millisecond,
		MaxTicks:          0,
		Seed:              1,
	}
}

// Validate checks parameter sanity
func (c Config) Validate() error {
	if c.LinkDistance <= 0 {
		return pkgerrors.NewValidation("link distance must be positive")
	}
	if c.LinkStiffness < 0 || c.LinkStiffness > 1 {
		return pkgerrors.NewValidation("link stiffness must be in [0, 1]")
	}
	if c.RepulsionStrength < 0 {
		return pkgerrors.NewValidation("repulsion strength cannot be negative")
	}
	if c.Theta <= 0 {
		return pkgerrors.NewValidation("theta must be positive")
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return pkgerrors.NewValidation("alpha must be in (0, 1]")
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		return pkgerrors.NewValidation("alpha decay must be in (0, 1)")
	}
	if c.AlphaMin <= 0 || c.AlphaMin >= c.Alpha {
		return pkgerrors.NewValidation("alpha min must be positive and below alpha")
	}
	if c.DragAlpha <= 0 || c.DragAlpha > 1 {
		return pkgerrors.NewValidation("drag alpha must be in (0, 1]")
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay > 1 {
		return pkgerrors.NewValidation("velocity decay must be in (0, 1]")
	}
	if c.TickInterval <= 0 {
		return pkgerrors.NewValidation("tick interval must be positive")
	}
	if c.MaxTicks < 0 {
		return pkgerrors.NewValidation("max ticks cannot be negative")
	}
	return nil
}
