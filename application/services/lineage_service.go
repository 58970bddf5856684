package services

import (
	"context"
	"fmt"
	"time"

	"lineage-backend/application/ports"
	"lineage-backend/domain/annotations"
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	domainservices "lineage-backend/domain/services"
	"lineage-backend/domain/simulation"
	"lineage-backend/domain/temporal"
	pkgerrors "lineage-backend/pkg/errors"
	"lineage-backend/pkg/observability"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LineageService is the application façade over the lineage graph: catalog
// ingestion, structural mutation, traversal queries, layout interaction,
// history and annotations. Every structural change flows through here so
// the simulation reheat and the temporal snapshot stay in lockstep with
// the graph.
type LineageService struct {
	graph     *aggregates.Graph
	engine    *simulation.Engine
	traversal *domainservices.TraversalService
	timeline  *temporal.Timeline
	notes     *annotations.Store
	feed      ports.CatalogFeed
	limits    ports.LimitProvider
	validate  *validator.Validate
	logger    *zap.Logger
	metrics   *observability.Metrics
	clock     func() time.Time
}

// NewLineageService wires the service. The feed may be nil when the process
// runs without an external catalog; RefreshFromCatalog then fails cleanly.
// A nil limit provider means unlimited ingest.
func NewLineageService(
	graph *aggregates.Graph,
	engine *simulation.Engine,
	traversal *domainservices.TraversalService,
	timeline *temporal.Timeline,
	notes *annotations.Store,
	feed ports.CatalogFeed,
	limits ports.LimitProvider,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*LineageService, error) {
	if graph == nil || engine == nil || traversal == nil || timeline == nil || notes == nil {
		return nil, pkgerrors.NewValidation("graph, engine, traversal, timeline and annotation store are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineageService{
		graph:     graph,
		engine:    engine,
		traversal: traversal,
		timeline:  timeline,
		notes:     notes,
		feed:      feed,
		limits:    limits,
		validate:  validator.New(),
		logger:    logger,
		metrics:   metrics,
		clock:     time.Now,
	}, nil
}

// IngestRejection records one payload the ingest refused, with the reason
type IngestRejection struct {
	Kind   string
	ID     string
	Reason string
}

// IngestReport summarizes one ingest run. Ingestion is per-item: a bad
// payload is rejected and reported, the rest of the batch still lands.
type IngestReport struct {
	NodesAccepted int
	EdgesAccepted int
	Rejections    []IngestRejection
}

// Accepted reports whether anything landed
func (r IngestReport) Accepted() bool {
	return r.NodesAccepted > 0 || r.EdgesAccepted > 0
}

// IngestAssets applies a catalog batch to the graph. Nodes land before
// edges so intra-batch references resolve. On any accepted change the
// simulation reheats and a snapshot is recorded.
func (s *LineageService) IngestAssets(ctx context.Context, batch ports.CatalogBatch) (IngestReport, error) {
	_, span := observability.StartSpan(ctx, "lineage.ingest",
		attribute.Int("nodes", len(batch.Nodes)),
		attribute.Int("edges", len(batch.Edges)))
	defer observability.EndSpan(span, nil)

	limits := s.currentLimits()
	if limits.MaxBatchSize > 0 && len(batch.Nodes)+len(batch.Edges) > limits.MaxBatchSize {
		return IngestReport{}, pkgerrors.NewValidation(fmt.Sprintf(
			"batch of %d payloads exceeds the configured maximum of %d",
			len(batch.Nodes)+len(batch.Edges), limits.MaxBatchSize))
	}

	var report IngestReport

	for _, payload := range batch.Nodes {
		var err error
		if limits.MaxNodes > 0 && s.graph.NodeCount() >= limits.MaxNodes {
			err = pkgerrors.NewValidation("graph node limit reached")
		} else {
			err = s.ingestNode(payload)
		}
		s.metrics.RecordIngested("node", err)
		if err != nil {
			report.Rejections = append(report.Rejections, IngestRejection{
				Kind: "node", ID: payload.ID, Reason: err.Error(),
			})
			continue
		}
		report.NodesAccepted++
	}

	for _, payload := range batch.Edges {
		var err error
		if limits.MaxEdges > 0 && s.graph.EdgeCount() >= limits.MaxEdges {
			err = pkgerrors.NewValidation("graph edge limit reached")
		} else {
			err = s.ingestEdge(payload)
		}
		s.metrics.RecordIngested("edge", err)
		if err != nil {
			report.Rejections = append(report.Rejections, IngestRejection{
				Kind: "edge", ID: payload.ID, Reason: err.Error(),
			})
			continue
		}
		report.EdgesAccepted++
	}

	if report.Accepted() {
		s.commitMutation("ingest")
	}

	s.logger.Info("catalog batch ingested",
		zap.Int("nodes_accepted", report.NodesAccepted),
		zap.Int("edges_accepted", report.EdgesAccepted),
		zap.Int("rejected", len(report.Rejections)))
	return report, nil
}

// RefreshFromCatalog pulls the current batch from the configured feed and
// ingests it
func (s *LineageService) RefreshFromCatalog(ctx context.Context) (IngestReport, error) {
	if s.feed == nil {
		return IngestReport{}, pkgerrors.NewValidation("no catalog feed configured")
	}

	ctx, span := observability.StartSpan(ctx, "lineage.refresh")
	batch, err := s.feed.FetchAssets(ctx)
	if err != nil {
		observability.EndSpan(span, err)
		return IngestReport{}, pkgerrors.Wrap(err, "catalog fetch failed")
	}
	observability.EndSpan(span, nil)

	return s.IngestAssets(ctx, batch)
}

// AddAsset inserts a single node and triggers reheat plus snapshot
func (s *LineageService) AddAsset(ctx context.Context, payload ports.NodePayload) error {
	_, span := observability.StartSpan(ctx, "lineage.add_asset")
	if limits := s.currentLimits(); limits.MaxNodes > 0 && s.graph.NodeCount() >= limits.MaxNodes {
		err := pkgerrors.NewValidation("graph node limit reached")
		observability.EndSpan(span, err)
		return err
	}
	err := s.ingestNode(payload)
	observability.EndSpan(span, err)
	s.metrics.RecordIngested("node", err)
	if err != nil {
		return err
	}
	s.commitMutation("add_asset")
	return nil
}

// AddLink inserts a single edge and triggers reheat plus snapshot
func (s *LineageService) AddLink(ctx context.Context, payload ports.EdgePayload) error {
	_, span := observability.StartSpan(ctx, "lineage.add_link")
	if limits := s.currentLimits(); limits.MaxEdges > 0 && s.graph.EdgeCount() >= limits.MaxEdges {
		err := pkgerrors.NewValidation("graph edge limit reached")
		observability.EndSpan(span, err)
		return err
	}
	err := s.ingestEdge(payload)
	observability.EndSpan(span, err)
	s.metrics.RecordIngested("edge", err)
	if err != nil {
		return err
	}
	s.commitMutation("add_link")
	return nil
}

// RemoveAsset removes a node, cascading its edges
func (s *LineageService) RemoveAsset(ctx context.Context, rawID string) error {
	_, span := observability.StartSpan(ctx, "lineage.remove_asset",
		attribute.String("node_id", rawID))

	id, err := valueobjects.ParseNodeID(rawID)
	if err == nil {
		err = s.graph.RemoveNode(id)
	}
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}
	s.commitMutation("remove_asset")
	return nil
}

// RemoveLink removes a single edge
func (s *LineageService) RemoveLink(ctx context.Context, rawID string) error {
	_, span := observability.StartSpan(ctx, "lineage.remove_link",
		attribute.String("edge_id", rawID))

	id, err := valueobjects.ParseEdgeID(rawID)
	if err == nil {
		err = s.graph.RemoveEdge(id)
	}
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}
	s.commitMutation("remove_link")
	return nil
}

// ShortestPath returns the node id sequence of the shortest undirected path
func (s *LineageService) ShortestPath(ctx context.Context, source, target string) (_ []string, err error) {
	_, span := observability.StartSpan(ctx, "lineage.shortest_path")
	defer func() { observability.EndSpan(span, err) }()
	s.metrics.RecordTraversal("shortest_path")

	sourceID, err := valueobjects.ParseNodeID(source)
	if err != nil {
		return nil, err
	}
	targetID, err := valueobjects.ParseNodeID(target)
	if err != nil {
		return nil, err
	}

	path, err := s.traversal.ShortestPath(s.graph, sourceID, targetID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = id.String()
	}
	return out, nil
}

// ImpactAnalysis reports what is affected when the given asset changes. The
// requested depth is clamped to the configured traversal ceiling.
func (s *LineageService) ImpactAnalysis(ctx context.Context, root, direction string, maxDepth int) (_ *domainservices.ImpactResult, err error) {
	maxDepth = s.clampDepth(maxDepth)
	_, span := observability.StartSpan(ctx, "lineage.impact",
		attribute.String("direction", direction),
		attribute.Int("max_depth", maxDepth))
	defer func() { observability.EndSpan(span, err) }()
	s.metrics.RecordTraversal("impact")

	rootID, err := valueobjects.ParseNodeID(root)
	if err != nil {
		return nil, err
	}
	dir, err := aggregates.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.traversal.Impact(s.graph, rootID, dir, maxDepth)
}

// NeighborsWithin returns the nodes within radiusHops of the root. The radius
// is clamped to the configured traversal ceiling.
func (s *LineageService) NeighborsWithin(ctx context.Context, root string, radiusHops int) (_ []domainservices.AffectedNode, err error) {
	radiusHops = s.clampDepth(radiusHops)
	_, span := observability.StartSpan(ctx, "lineage.neighbors")
	defer func() { observability.EndSpan(span, err) }()
	s.metrics.RecordTraversal("neighbors")

	rootID, err := valueobjects.ParseNodeID(root)
	if err != nil {
		return nil, err
	}
	return s.traversal.NeighborsWithin(s.graph, rootID, radiusHops)
}

// Layouts returns the last committed position of every node
func (s *LineageService) Layouts() []aggregates.NodeLayout {
	return s.graph.Layouts()
}

// StartDrag pins a node for user interaction
func (s *LineageService) StartDrag(rawID string) error {
	id, err := valueobjects.ParseNodeID(rawID)
	if err != nil {
		return err
	}
	return s.engine.StartDrag(id)
}

// Drag moves a pinned node to user-dictated coordinates
func (s *LineageService) Drag(rawID string, x, y float64) error {
	id, err := valueobjects.ParseNodeID(rawID)
	if err != nil {
		return err
	}
	return s.engine.Drag(id, x, y)
}

// EndDrag releases a node back to the simulation
func (s *LineageService) EndDrag(rawID string) error {
	id, err := valueobjects.ParseNodeID(rawID)
	if err != nil {
		return err
	}
	return s.engine.EndDrag(id)
}

// History exposes the snapshot timeline
func (s *LineageService) History() *temporal.Timeline {
	return s.timeline
}

// DiffBetween returns the net structural change between two recorded
// snapshot timestamps
func (s *LineageService) DiffBetween(ctx context.Context, a, b time.Time) (temporal.Diff, error) {
	_, span := observability.StartSpan(ctx, "lineage.diff")
	d, err := s.timeline.Diff(a, b)
	observability.EndSpan(span, err)
	return d, err
}

// Playback returns a restartable iterator over the snapshots in [from, to]
func (s *LineageService) Playback(from, to time.Time) *temporal.Playback {
	return s.timeline.Playback(from, to)
}

// Annotate attaches commentary to a node or edge. targetKind is "node" or
// "edge"; the target may reference an element that no longer exists, the
// annotation then lists as orphaned.
func (s *LineageService) Annotate(ctx context.Context, targetKind, targetID, author, category, content string) (*annotations.Annotation, error) {
	if limits := s.currentLimits(); limits.MaxAnnotationBytes > 0 && len(content) > limits.MaxAnnotationBytes {
		return nil, pkgerrors.NewValidation(fmt.Sprintf(
			"annotation content of %d bytes exceeds the configured maximum of %d",
			len(content), limits.MaxAnnotationBytes))
	}
	target, err := parseTarget(targetKind, targetID)
	if err != nil {
		return nil, err
	}
	cat, err := annotations.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return s.notes.Create(target, author, cat, content)
}

// UpdateAnnotation edits an annotation; only the author may edit
func (s *LineageService) UpdateAnnotation(ctx context.Context, id, author, category, content string) (*annotations.Annotation, error) {
	cat, err := annotations.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return s.notes.Update(id, author, cat, content)
}

// DeleteAnnotation soft-deletes an annotation; only the author may delete
func (s *LineageService) DeleteAnnotation(ctx context.Context, id, author string) error {
	return s.notes.Delete(id, author)
}

// AnnotationsFor lists the live annotations on a node or edge, oldest first
func (s *LineageService) AnnotationsFor(ctx context.Context, targetKind, targetID string) ([]annotations.Record, error) {
	target, err := parseTarget(targetKind, targetID)
	if err != nil {
		return nil, err
	}
	return s.notes.ListFor(target), nil
}

// ingestNode validates and inserts one node payload
func (s *LineageService) ingestNode(payload ports.NodePayload) error {
	if err := s.validate.Struct(payload); err != nil {
		return pkgerrors.NewValidation(fmt.Sprintf("invalid node payload: %v", err))
	}
	id, err := valueobjects.ParseNodeID(payload.ID)
	if err != nil {
		return err
	}
	category, err := entities.ParseCategory(payload.Category)
	if err != nil {
		return err
	}
	node, err := entities.NewNode(id, payload.Name, category, payload.Metadata)
	if err != nil {
		return err
	}
	if payload.Radius > 0 {
		if err := node.SetRadius(payload.Radius); err != nil {
			return err
		}
	}
	return s.graph.AddNode(node)
}

// ingestEdge validates and inserts one edge payload. A missing edge id is
// minted; a missing weight defaults to 1.
func (s *LineageService) ingestEdge(payload ports.EdgePayload) error {
	if err := s.validate.Struct(payload); err != nil {
		return pkgerrors.NewValidation(fmt.Sprintf("invalid edge payload: %v", err))
	}
	var edgeID valueobjects.EdgeID
	if payload.ID != "" {
		parsed, err := valueobjects.ParseEdgeID(payload.ID)
		if err != nil {
			return err
		}
		edgeID = parsed
	}
	source, err := valueobjects.ParseNodeID(payload.Source)
	if err != nil {
		return err
	}
	target, err := valueobjects.ParseNodeID(payload.Target)
	if err != nil {
		return err
	}
	kind, err := entities.ParseKind(payload.Kind)
	if err != nil {
		return err
	}
	edge, err := entities.NewEdge(edgeID, source, target, kind, payload.Weight)
	if err != nil {
		return err
	}
	return s.graph.AddEdge(edge)
}

// currentLimits re-reads the limit provider; without one everything is
// unlimited
func (s *LineageService) currentLimits() ports.IngestLimits {
	if s.limits == nil {
		return ports.IngestLimits{}
	}
	return s.limits.IngestLimits()
}

// clampDepth caps a requested traversal depth at the configured ceiling
func (s *LineageService) clampDepth(depth int) int {
	if max := s.currentLimits().MaxTraversalDepth; max > 0 && depth > max {
		return max
	}
	return depth
}

// commitMutation runs the post-mutation protocol: drain the domain events,
// reheat the simulation so the layout absorbs the change, and record a
// snapshot on the timeline.
func (s *LineageService) commitMutation(reason string) {
	drained := s.graph.DrainEvents()
	for _, event := range drained {
		s.logger.Debug("graph event", zap.String("type", event.EventType()))
	}

	s.engine.Reheat()

	ts := s.clock()
	if latest := s.timeline.Latest(); latest != nil && !ts.After(latest.TakenAt()) {
		ts = latest.TakenAt().Add(time.Nanosecond)
	}
	if err := s.timeline.Record(temporal.Capture(s.graph, ts)); err != nil {
		s.logger.Error("failed to record snapshot",
			zap.String("reason", reason), zap.Error(err))
		return
	}
	s.metrics.RecordSnapshot()
}

func parseTarget(kind, id string) (annotations.Target, error) {
	switch kind {
	case "node":
		nodeID, err := valueobjects.ParseNodeID(id)
		if err != nil {
			return annotations.Target{}, err
		}
		return annotations.NodeTarget(nodeID), nil
	case "edge":
		edgeID, err := valueobjects.ParseEdgeID(id)
		if err != nil {
			return annotations.Target{}, err
		}
		return annotations.EdgeTarget(edgeID), nil
	}
	return annotations.Target{}, pkgerrors.NewValidation("annotation target kind must be node or edge")
}
