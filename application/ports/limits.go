package ports

// IngestLimits bounds what the application accepts in one operation. A zero
// field means unlimited.
type IngestLimits struct {
	MaxNodes           int
	MaxEdges           int
	MaxTraversalDepth  int
	MaxBatchSize       int
	MaxAnnotationBytes int
}

// LimitProvider supplies the current limits. Implementations may change them
// at runtime; the service re-reads them on every operation.
type LimitProvider interface {
	IngestLimits() IngestLimits
}
