package simulation

import (
	"math"
)

// simEdge references the working set by index
type simEdge struct {
	source, target int
	weight         float64
}

// applyLinkForce pulls each edge's endpoints toward the configured
// separation, scaled by stiffness and the edge's weight. Both endpoints move
// half way unless one is pinned, in which case the free one absorbs the full
// correction.
func applyLinkForce(nodes []*simNode, edges []simEdge, alpha, distance, stiffness float64, jiggle func() float64) {
	for _, e := range edges {
		source := nodes[e.source]
		target := nodes[e.target]
		if source == target {
			// Self-loops exert no spring force
			continue
		}

		dx := target.x + target.vx - source.x - source.vx
		dy := target.y + target.vy - source.y - source.vy
		if dx == 0 && dy == 0 {
			dx = jiggle()
			dy = jiggle()
		}
		d := math.Sqrt(dx*dx + dy*dy)

		l := (d - distance) / d * alpha * stiffness * e.weight
		dx *= l
		dy *= l

		sourceShare := 0.5
		targetShare := 0.5
		if source.pinned && !target.pinned {
			sourceShare, targetShare = 0, 1
		} else if target.pinned && !source.pinned {
			sourceShare, targetShare = 1, 0
		}

		target.vx -= dx * targetShare
		target.vy -= dy * targetShare
		source.vx += dx * sourceShare
		source.vy += dy * sourceShare
	}
}

// applyCenterForce nudges the centroid of all nodes toward the canvas center,
// preventing the layout from drifting off screen
func applyCenterForce(nodes []*simNode, centerX, centerY, strength float64) {
	if len(nodes) == 0 {
		return
	}

	var sx, sy float64
	for _, n := range nodes {
		sx += n.x
		sy += n.y
	}
	shiftX := (centerX - sx/float64(len(nodes))) * strength
	shiftY := (centerY - sy/float64(len(nodes))) * strength

	for _, n := range nodes {
		if n.pinned {
			continue
		}
		n.x += shiftX
		n.y += shiftY
	}
}

// applyCollision separates node pairs closer than the sum of their radii plus
// padding, nudging positions apart proportionally. Candidate pairs come from
// the quadtree so dense graphs stay tractable.
func applyCollision(nodes []*simNode, qt *quadtree, padding float64, jiggle func() float64) {
	for _, n := range nodes {
		reach := n.radius + padding
		qt.visitWithin(n.x, n.y, reach, func(other *simNode) {
			// Handle each unordered pair once
			if other.index <= n.index {
				return
			}

			dx := n.x - other.x
			dy := n.y - other.y
			minDist := n.radius + other.radius + padding
			d2 := dx*dx + dy*dy
			if d2 >= minDist*minDist {
				return
			}
			if d2 == 0 {
				dx = jiggle()
				dy = jiggle()
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			overlap := (minDist - d) / d

			nShare := 0.5
			otherShare := 0.5
			switch {
			case n.pinned && other.pinned:
				return
			case n.pinned:
				nShare, otherShare = 0, 1
			case other.pinned:
				nShare, otherShare = 1, 0
			}

			n.x += dx * overlap * nShare
			n.y += dy * overlap * nShare
			other.x -= dx * overlap * otherShare
			other.y -= dy * overlap * otherShare
		})
	}
}

// integrate folds accumulated velocities into positions. Pinned nodes hold
// still and shed any accumulated velocity.
func integrate(nodes []*simNode, velocityDecay float64) {
	for _, n := range nodes {
		if n.pinned {
			n.vx = 0
			n.vy = 0
			continue
		}
		n.vx *= velocityDecay
		n.vy *= velocityDecay
		n.x += n.vx
		n.y += n.vy
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
