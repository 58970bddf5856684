package temporal

import "sort"

// ChangeType classifies one entry's change between two snapshots
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// NodeChange records one node's transition. Before is nil for additions,
// After is nil for removals, both are set for modifications.
type NodeChange struct {
	ID     string
	Type   ChangeType
	Before *NodeRecord
	After  *NodeRecord
}

// EdgeChange records one edge's transition
type EdgeChange struct {
	ID     string
	Type   ChangeType
	Before *EdgeRecord
	After  *EdgeRecord
}

// Diff is the change-list between two snapshots, sorted by entry ID
type Diff struct {
	Nodes []NodeChange
	Edges []EdgeChange
}

// Empty reports whether the diff carries no changes
func (d Diff) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}

// computeDiff derives the change-list from prev to next. A nil prev stands
// for the empty graph, so the first snapshot diffs as all-added.
func computeDiff(prev, next *Snapshot) Diff {
	var d Diff

	for id, after := range next.nodes {
		record := after
		if prev == nil {
			d.Nodes = append(d.Nodes, NodeChange{ID: id, Type: ChangeAdded, After: &record})
			continue
		}
		before, ok := prev.nodes[id]
		switch {
		case !ok:
			d.Nodes = append(d.Nodes, NodeChange{ID: id, Type: ChangeAdded, After: &record})
		case !before.equal(after):
			b := before
			d.Nodes = append(d.Nodes, NodeChange{ID: id, Type: ChangeModified, Before: &b, After: &record})
		}
	}
	if prev != nil {
		for id, before := range prev.nodes {
			if _, ok := next.nodes[id]; !ok {
				b := before
				d.Nodes = append(d.Nodes, NodeChange{ID: id, Type: ChangeRemoved, Before: &b})
			}
		}
	}

	for id, after := range next.edges {
		record := after
		if prev == nil {
			d.Edges = append(d.Edges, EdgeChange{ID: id, Type: ChangeAdded, After: &record})
			continue
		}
		before, ok := prev.edges[id]
		switch {
		case !ok:
			d.Edges = append(d.Edges, EdgeChange{ID: id, Type: ChangeAdded, After: &record})
		case !before.equal(after):
			b := before
			d.Edges = append(d.Edges, EdgeChange{ID: id, Type: ChangeModified, Before: &b, After: &record})
		}
	}
	if prev != nil {
		for id, before := range prev.edges {
			if _, ok := next.edges[id]; !ok {
				b := before
				d.Edges = append(d.Edges, EdgeChange{ID: id, Type: ChangeRemoved, Before: &b})
			}
		}
	}

	d.sort()
	return d
}

// composeDiffs folds an ordered run of stepwise diffs into one net diff.
// Per entry it keeps the earliest before-state and the latest after-state,
// then reclassifies: an add followed by a remove cancels out entirely, a
// chain of modifications collapses to a single before/after pair, and a
// round trip back to the original state disappears.
func composeDiffs(steps []Diff) Diff {
	type nodeSpan struct {
		before *NodeRecord
		after  *NodeRecord
		seen   bool
	}
	type edgeSpan struct {
		before *EdgeRecord
		after  *EdgeRecord
		seen   bool
	}

	nodeSpans := make(map[string]*nodeSpan)
	edgeSpans := make(map[string]*edgeSpan)

	for _, step := range steps {
		for _, c := range step.Nodes {
			span, ok := nodeSpans[c.ID]
			if !ok {
				span = &nodeSpan{}
				nodeSpans[c.ID] = span
			}
			if !span.seen {
				span.before = c.Before
				span.seen = true
			}
			span.after = c.After
		}
		for _, c := range step.Edges {
			span, ok := edgeSpans[c.ID]
			if !ok {
				span = &edgeSpan{}
				edgeSpans[c.ID] = span
			}
			if !span.seen {
				span.before = c.Before
				span.seen = true
			}
			span.after = c.After
		}
	}

	var out Diff
	for id, span := range nodeSpans {
		switch {
		case span.before == nil && span.after == nil:
			// added then removed within the window: no net change
		case span.before == nil:
			out.Nodes = append(out.Nodes, NodeChange{ID: id, Type: ChangeAdded, After: span.after})
		case span.after == nil:
			out.Nodes = append(out.Nodes, NodeChange{ID: id, Type: ChangeRemoved, Before: span.before})
		case !span.before.equal(*span.after):
			out.Nodes = append(out.Nodes, NodeChange{ID: id, Type: ChangeModified, Before: span.before, After: span.after})
		}
	}
	for id, span := range edgeSpans {
		switch {
		case span.before == nil && span.after == nil:
		case span.before == nil:
			out.Edges = append(out.Edges, EdgeChange{ID: id, Type: ChangeAdded, After: span.after})
		case span.after == nil:
			out.Edges = append(out.Edges, EdgeChange{ID: id, Type: ChangeRemoved, Before: span.before})
		case !span.before.equal(*span.after):
			out.Edges = append(out.Edges, EdgeChange{ID: id, Type: ChangeModified, Before: span.before, After: span.after})
		}
	}

	out.sort()
	return out
}

func (d *Diff) sort() {
	sort.Slice(d.Nodes, func(i, j int) bool { return d.Nodes[i].ID < d.Nodes[j].ID })
	sort.Slice(d.Edges, func(i, j int) bool { return d.Edges[i].ID < d.Edges[j].ID })
}
