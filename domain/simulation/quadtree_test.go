package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSimNodes(coords [][2]float64) []*simNode {
	nodes := make([]*simNode, len(coords))
	for i, c := range coords {
		nodes[i] = &simNode{index: i, x: c[0], y: c[1], radius: DefaultTestRadius}
	}
	return nodes
}

const DefaultTestRadius = 8.0

func testJiggle() func() float64 {
	rng := rand.New(rand.NewSource(1))
	return func() float64 { return (rng.Float64() - 0.5) * 1e-6 }
}

func TestQuadtreeAggregateMass(t *testing.T) {
	nodes := makeSimNodes([][2]float64{{0, 0}, {10, 0}, {0, 10}, {10, 10}, {5, 5}})
	qt := newQuadtree(nodes)

	require.NotNil(t, qt.root)
	assert.Equal(t, 5.0, qt.root.mass)
	assert.InDelta(t, 5.0, qt.root.massX, 1e-9)
	assert.InDelta(t, 5.0, qt.root.massY, 1e-9)
}

func TestQuadtreeCoincidentPoints(t *testing.T) {
	// Identical coordinates must chain in one leaf, not split forever
	nodes := makeSimNodes([][2]float64{{1, 1}, {1, 1}, {1, 1}})
	qt := newQuadtree(nodes)

	require.NotNil(t, qt.root)
	assert.Equal(t, 3.0, qt.root.mass)
}

func TestQuadtreeEmpty(t *testing.T) {
	qt := newQuadtree(nil)
	assert.Nil(t, qt.root)

	// Both accumulators tolerate an empty tree
	n := &simNode{}
	qt.applyCharge(n, 0.9, 100, 1, testJiggle())
	qt.visitWithin(0, 0, 10, func(*simNode) { t.Fatal("unexpected visit") })
}

func TestApplyChargeRepelsNodes(t *testing.T) {
	nodes := makeSimNodes([][2]float64{{0, 0}, {10, 0}})
	qt := newQuadtree(nodes)
	jiggle := testJiggle()

	qt.applyCharge(nodes[0], 0.9, 100, 1, jiggle)
	qt.applyCharge(nodes[1], 0.9, 100, 1, jiggle)

	// Left node pushed further left, right node further right
	assert.Negative(t, nodes[0].vx)
	assert.Positive(t, nodes[1].vx)
	assert.InDelta(t, -nodes[0].vx, nodes[1].vx, 1e-9)
}

func TestApplyChargeCoincidentJiggle(t *testing.T) {
	nodes := makeSimNodes([][2]float64{{3, 3}, {3, 3}})
	qt := newQuadtree(nodes)
	jiggle := testJiggle()

	qt.applyCharge(nodes[0], 0.9, 100, 1, jiggle)

	// Jiggle breaks the tie: force is finite and nonzero
	assert.True(t, finite(nodes[0].vx))
	assert.True(t, finite(nodes[0].vy))
	assert.NotZero(t, nodes[0].vx*nodes[0].vx+nodes[0].vy*nodes[0].vy)
}

func TestApplyChargeFarFieldApproximation(t *testing.T) {
	// A tight distant cluster should act like one mass: the approximated
	// force must be close to the exact pairwise sum.
	cluster := [][2]float64{{1000, 0}, {1001, 0}, {1000, 1}, {1001, 1}}
	nodes := makeSimNodes(append([][2]float64{{0, 0}}, cluster...))
	target := nodes[0]

	qt := newQuadtree(nodes)
	qt.applyCharge(target, 0.9, 100, 1, testJiggle())
	approx := target.vx

	// Exact pairwise sum: F = strength/d² along the unit vector
	var exact float64
	for _, c := range cluster {
		dx := target.x - c[0]
		dy := target.y - c[1]
		d2 := dx*dx + dy*dy
		exact += dx / math.Sqrt(d2) * (100 / d2)
	}

	assert.InDelta(t, exact, approx, math.Abs(exact)*0.05)
}

func TestVisitWithinFindsNeighbors(t *testing.T) {
	nodes := makeSimNodes([][2]float64{{0, 0}, {5, 0}, {100, 100}})
	qt := newQuadtree(nodes)

	var visited []int
	qt.visitWithin(0, 0, 10, func(n *simNode) {
		visited = append(visited, n.index)
	})

	assert.Contains(t, visited, 0)
	assert.Contains(t, visited, 1)
	assert.NotContains(t, visited, 2)
}
