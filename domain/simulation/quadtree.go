package simulation

import (
	"math"

	"lineage-backend/domain/core/valueobjects"
)

// simNode is the engine's private working copy of a node's kinematics for one
// tick. No aliasing with the entities the renderer reads.
type simNode struct {
	index  int
	id     valueobjects.NodeID
	x, y   float64
	vx, vy float64
	radius float64
	pinned bool
}

const maxQuadDepth = 24

// cell is one square region of the Barnes-Hut quadtree. Leaves hold points
// (coincident points chain in the same leaf); internal cells carry the
// aggregate mass used for far-field charge approximation.
type cell struct {
	x0, y0, x1, y1 float64
	children       *[4]*cell
	points         []*simNode

	mass         float64
	massX, massY float64
	maxRadius    float64
}

type quadtree struct {
	root *cell
}

// newQuadtree builds a tree over the working set in index order, so the tree
// shape (and therefore float accumulation order) is reproducible.
func newQuadtree(nodes []*simNode) *quadtree {
	if len(nodes) == 0 {
		return &quadtree{}
	}

	x0, y0 := nodes[0].x, nodes[0].y
	x1, y1 := x0, y0
	for _, n := range nodes[1:] {
		x0 = math.Min(x0, n.x)
		y0 = math.Min(y0, n.y)
		x1 = math.Max(x1, n.x)
		y1 = math.Max(y1, n.y)
	}

	// Expand to a square so quadrants stay uniform
	size := math.Max(x1-x0, y1-y0)
	if size == 0 {
		size = 1
	}
	root := &cell{x0: x0, y0: y0, x1: x0 + size, y1: y0 + size}

	for _, n := range nodes {
		root.insert(n, 0)
	}
	root.aggregate()
	return &quadtree{root: root}
}

func (c *cell) insert(n *simNode, depth int) {
	if c.children == nil {
		if len(c.points) == 0 {
			c.points = append(c.points, n)
			return
		}
		// Coincident points (or a degenerate cluster) share a leaf
		if depth >= maxQuadDepth || (c.points[0].x == n.x && c.points[0].y == n.y) {
			c.points = append(c.points, n)
			return
		}
		c.split(depth)
	}
	c.quadrantFor(n).insert(n, depth+1)
}

func (c *cell) split(depth int) {
	mx := (c.x0 + c.x1) / 2
	my := (c.y0 + c.y1) / 2
	c.children = &[4]*cell{
		{x0: c.x0, y0: c.y0, x1: mx, y1: my},
		{x0: mx, y0: c.y0, x1: c.x1, y1: my},
		{x0: c.x0, y0: my, x1: mx, y1: c.y1},
		{x0: mx, y0: my, x1: c.x1, y1: c.y1},
	}
	existing := c.points
	c.points = nil
	for _, p := range existing {
		c.quadrantFor(p).insert(p, depth+1)
	}
}

func (c *cell) quadrantFor(n *simNode) *cell {
	mx := (c.x0 + c.x1) / 2
	my := (c.y0 + c.y1) / 2
	i := 0
	if n.x >= mx {
		i |= 1
	}
	if n.y >= my {
		i |= 2
	}
	return c.children[i]
}

// aggregate computes mass, center of mass and max radius bottom-up
func (c *cell) aggregate() {
	if c.children == nil {
		c.mass = float64(len(c.points))
		for _, p := range c.points {
			c.massX += p.x
			c.massY += p.y
			c.maxRadius = math.Max(c.maxRadius, p.radius)
		}
		if c.mass > 0 {
			c.massX /= c.mass
			c.massY /= c.mass
		}
		return
	}

	for _, child := range c.children {
		child.aggregate()
		c.mass += child.mass
		c.massX += child.massX * child.mass
		c.massY += child.massY * child.mass
		c.maxRadius = math.Max(c.maxRadius, child.maxRadius)
	}
	if c.mass > 0 {
		c.massX /= c.mass
		c.massY /= c.mass
	}
}

// distanceMin2 clamps the squared distance in charge computation so nearly
// coincident nodes do not produce unbounded forces
const distanceMin2 = 1.0

// applyCharge accumulates the inverse-square repulsion acting on target.
// Cells whose size-to-distance ratio is below theta contribute as a single
// point mass, giving O(n log n) per tick. jiggle breaks exact coincidence
// deterministically from the engine's seeded stream.
func (qt *quadtree) applyCharge(target *simNode, theta, strength, alpha float64, jiggle func() float64) {
	if qt.root == nil {
		return
	}

	theta2 := theta * theta

	var visit func(c *cell)
	visit = func(c *cell) {
		if c.mass == 0 {
			return
		}

		dx := target.x - c.massX
		dy := target.y - c.massY
		size := c.x1 - c.x0
		d2 := dx*dx + dy*dy

		if c.children != nil && size*size < theta2*d2 {
			// Far field: treat the whole cell as one mass
			if d2 < distanceMin2 {
				d2 = distanceMin2
			}
			f := strength * c.mass * alpha / d2
			d := math.Sqrt(d2)
			target.vx += dx / d * f
			target.vy += dy / d * f
			return
		}

		if c.children != nil {
			for _, child := range c.children {
				visit(child)
			}
			return
		}

		for _, p := range c.points {
			if p == target {
				continue
			}
			pdx := target.x - p.x
			pdy := target.y - p.y
			pd2 := pdx*pdx + pdy*pdy
			if pd2 == 0 {
				pdx = jiggle()
				pdy = jiggle()
				pd2 = pdx*pdx + pdy*pdy
			}
			if pd2 < distanceMin2 {
				pd2 = distanceMin2
			}
			f := strength * alpha / pd2
			pd := math.Sqrt(pd2)
			target.vx += pdx / pd * f
			target.vy += pdy / pd * f
		}
	}
	visit(qt.root)
}

// visitWithin calls fn for every point whose leaf could overlap a circle of
// the given radius around (x, y), pruning cells that cannot
func (qt *quadtree) visitWithin(x, y, radius float64, fn func(*simNode)) {
	if qt.root == nil {
		return
	}

	var visit func(c *cell)
	visit = func(c *cell) {
		if c.mass == 0 {
			return
		}
		reach := radius + c.maxRadius
		if c.x0 > x+reach || c.x1 < x-reach || c.y0 > y+reach || c.y1 < y-reach {
			return
		}
		if c.children != nil {
			for _, child := range c.children {
				visit(child)
			}
			return
		}
		for _, p := range c.points {
			fn(p)
		}
	}
	visit(qt.root)
}
