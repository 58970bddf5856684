package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lineage-backend/application/ports"
)

// NewHTTPFetch builds a FetchFunc that GETs a catalog batch as JSON from
// the given URL. A nil client falls back to http.DefaultClient; deadlines
// come from the caller's context (the feed adapter sets one).
func NewHTTPFetch(url string, client *http.Client) FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}

	return func(ctx context.Context) (ports.CatalogBatch, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return ports.CatalogBatch{}, fmt.Errorf("failed to build catalog request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return ports.CatalogBatch{}, fmt.Errorf("catalog request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return ports.CatalogBatch{}, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
		}

		var batch ports.CatalogBatch
		if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
			return ports.CatalogBatch{}, fmt.Errorf("failed to decode catalog payload: %w", err)
		}
		return batch, nil
	}
}
