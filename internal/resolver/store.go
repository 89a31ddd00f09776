// internal/resolver/store.go
package resolver

import (
	"context"
	"database/sql"
	"encoding/json"

	stderrors "report-intake/internal/common/errors"
)

// ResourceStore is the durable tier-1 store. Anything discovered by a
// later tier is persisted back through Put.
type ResourceStore interface {
	Get(ctx context.Context, resourceType, key string) (map[string]interface{}, bool, error)
	Put(ctx context.Context, resourceType, key string, data map[string]interface{}, source string) error
}

// PostgresResourceStore keeps resolved resources in a single table with
// a JSONB payload, upserted on (resource_type, lookup_key).
type PostgresResourceStore struct {
	db *sql.DB
}

func NewPostgresResourceStore(db *sql.DB) *PostgresResourceStore {
	return &PostgresResourceStore{db: db}
}

const getResourceQuery = `SELECT data FROM resources WHERE resource_type = $1 AND lookup_key = $2`

func (s *PostgresResourceStore) Get(ctx context.Context, resourceType, key string) (map[string]interface{}, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, getResourceQuery, resourceType, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, stderrors.Wrap(stderrors.ErrCodeStoreQueryFailed, "resource lookup", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, stderrors.Wrap(stderrors.ErrCodeStoreQueryFailed, "decode resource payload", err)
	}
	return data, true, nil
}

const putResourceQuery = `
INSERT INTO resources (resource_type, lookup_key, data, source, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (resource_type, lookup_key)
DO UPDATE SET data = EXCLUDED.data, source = EXCLUDED.source, updated_at = NOW()`

func (s *PostgresResourceStore) Put(ctx context.Context, resourceType, key string, data map[string]interface{}, source string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return stderrors.Wrap(stderrors.ErrCodeStoreQueryFailed, "encode resource payload", err)
	}
	if _, err := s.db.ExecContext(ctx, putResourceQuery, resourceType, key, raw, source); err != nil {
		return stderrors.Wrap(stderrors.ErrCodeStoreQueryFailed, "resource upsert", err)
	}
	return nil
}
