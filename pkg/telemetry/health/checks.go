package health

import (
	"context"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/catalog"
	"mercator-hq/underwriter/pkg/documents"
)

// CatalogCheck fails until the catalog manager holds a snapshot.
func CatalogCheck(manager *catalog.Manager) CheckFunc {
	return func(_ context.Context) error {
		_, err := manager.Snapshot()
		return err
	}
}

// DocumentStoreCheck pings the document store.
func DocumentStoreCheck(store documents.Store) CheckFunc {
	return func(ctx context.Context) error {
		return store.Ping(ctx)
	}
}

// AuditCheck runs a minimal query against the audit storage.
func AuditCheck(storage audit.Storage) CheckFunc {
	return func(ctx context.Context) error {
		_, err := storage.Count(ctx, &audit.Query{Limit: 1})
		return err
	}
}
