package ports

import "context"

// NodePayload is one asset as delivered by an external catalog feed
type NodePayload struct {
	ID       string            `json:"id" validate:"required"`
	Name     string            `json:"name" validate:"required,max=255"`
	Category string            `json:"category" validate:"required,oneof=table view transformation report api file external"`
	Metadata map[string]string `json:"metadata,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Radius   float64           `json:"radius,omitempty" validate:"omitempty,gt=0"`
}

// EdgePayload is one lineage relationship as delivered by an external
// catalog feed
type EdgePayload struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Kind   string  `json:"kind" validate:"required,oneof=direct derived aggregated reference"`
	Weight float64 `json:"weight,omitempty" validate:"omitempty,gte=0"`
}

// CatalogBatch is one feed delivery
type CatalogBatch struct {
	Nodes []NodePayload `json:"nodes"`
	Edges []EdgePayload `json:"edges"`
}

// CatalogFeed pulls asset and lineage payloads from an external catalog.
// Implementations own transport, retries and circuit breaking; callers only
// see a batch or an error.
type CatalogFeed interface {
	FetchAssets(ctx context.Context) (CatalogBatch, error)
}
