// internal/resolver/resolver.go
package resolver

import (
	"context"
	"fmt"
	"time"

	stderrors "report-intake/internal/common/errors"
	"report-intake/internal/common/logger"
	"report-intake/internal/common/metrics"
	"report-intake/internal/common/validation"
)

// manualSchemas validate user-submitted resource payloads per type.
var manualSchemas = map[string]string{
	TypeTemplate: `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"sections": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["name"]
	}`,
	TypeSignal: `{
		"type": "object",
		"properties": {
			"signalType": {"type": "string", "enum": ["AI", "AO", "DI", "DO"]},
			"units": {"type": "string"}
		},
		"required": ["signalType"]
	}`,
	TypeComponent: `{
		"type": "object",
		"properties": {
			"vendor": {"type": "string", "minLength": 1},
			"family": {"type": "string"},
			"category": {"type": "string"}
		},
		"required": ["vendor"]
	}`,
}

// Resolver walks the lookup cascade: durable store, curated catalog,
// assisted search, manual fallback. First success wins and is persisted
// back so identical queries later resolve at tier 1.
type Resolver struct {
	store           ResourceStore
	catalog         *Catalog
	searchers       []Searcher
	assistedTimeout time.Duration
	logger          logger.Logger
}

func New(store ResourceStore, catalog *Catalog, searchers []Searcher, assistedTimeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		store:           store,
		catalog:         catalog,
		searchers:       searchers,
		assistedTimeout: assistedTimeout,
		logger:          log.With(map[string]interface{}{"component": "resolver"}),
	}
}

// Resolve runs the cascade for one query. It never returns an error:
// tier failures degrade to the next tier, and a full miss is a
// manual-required result, not a failure.
func (r *Resolver) Resolve(ctx context.Context, resourceType, query, vendor string) *LookupResult {
	key := NormalizeQuery(query)
	var tiersTried []string

	// Tier 1: durable store, cheapest and authoritative.
	tiersTried = append(tiersTried, SourceStore)
	data, found, err := r.store.Get(ctx, resourceType, key)
	if err != nil {
		r.logger.WithError(err).Warn("store lookup failed, continuing cascade", map[string]interface{}{
			"resourceType": resourceType, "query": key,
		})
	}
	if found {
		metrics.ResolverLookups.WithLabelValues(resourceType, SourceStore).Inc()
		return &LookupResult{Success: true, Data: data, Source: SourceStore, TiersTried: tiersTried}
	}

	// Tier 2: curated catalog, warmed back into the store on hit.
	tiersTried = append(tiersTried, SourceCache)
	if data, ok := r.catalog.Lookup(resourceType, key); ok {
		r.persistBack(ctx, resourceType, key, data, SourceCache)
		metrics.ResolverLookups.WithLabelValues(resourceType, SourceCache).Inc()
		return &LookupResult{Success: true, Data: data, Source: SourceCache, TiersTried: tiersTried}
	}

	// Tier 3: assisted search with a bounded timeout per searcher.
	if len(r.searchers) > 0 {
		tiersTried = append(tiersTried, SourceAssisted)
		if data := r.searchAssisted(ctx, resourceType, key, vendor); data != nil {
			r.persistBack(ctx, resourceType, key, data, SourceAssisted)
			metrics.ResolverLookups.WithLabelValues(resourceType, SourceAssisted).Inc()
			return &LookupResult{Success: true, Data: data, Source: SourceAssisted, TiersTried: tiersTried}
		}
	}

	// Tier 4: nothing left but the user.
	metrics.ResolverLookups.WithLabelValues(resourceType, SourceNone).Inc()
	return &LookupResult{
		Source:         SourceNone,
		ManualRequired: true,
		TiersTried:     tiersTried,
		Message:        fmt.Sprintf("No %s found for %q. Please provide the details manually.", resourceType, query),
	}
}

func (r *Resolver) searchAssisted(ctx context.Context, resourceType, key, vendor string) map[string]interface{} {
	for _, searcher := range r.searchers {
		searchCtx, cancel := context.WithTimeout(ctx, r.assistedTimeout)
		data, err := searcher.Search(searchCtx, resourceType, key, vendor)
		cancel()

		if err != nil {
			r.logger.WithError(err).Warn("assisted search failed, trying next", map[string]interface{}{
				"resourceType": resourceType, "query": key,
			})
			continue
		}
		if data != nil {
			return data
		}
	}
	return nil
}

// persistBack warms the store after a hit beyond tier 1. A write
// failure only costs the short-circuit on the next query, so it is
// logged and swallowed.
func (r *Resolver) persistBack(ctx context.Context, resourceType, key string, data map[string]interface{}, source string) {
	if err := r.store.Put(ctx, resourceType, key, data, source); err != nil {
		r.logger.WithError(err).Warn("persist-back failed", map[string]interface{}{
			"resourceType": resourceType, "query": key, "source": source,
		})
	}
}

// SubmitManual stores a user-supplied resource directly, skipping the
// cascade. Manual entries are as authoritative as any store hit on
// later lookups.
func (r *Resolver) SubmitManual(ctx context.Context, resourceType, query string, data map[string]interface{}) (*LookupResult, error) {
	key := NormalizeQuery(query)

	if schemaJSON, ok := manualSchemas[resourceType]; ok {
		vr, err := validation.ValidateAgainstSchema(data, schemaJSON)
		if err != nil {
			return nil, stderrors.Wrap(stderrors.ErrCodeManualEntryInvalid, "manual entry validation", err)
		}
		if !vr.Valid {
			stdErr := stderrors.New(stderrors.ErrCodeManualEntryInvalid, "manual entry does not match the expected shape")
			stdErr.WithMetadata("problems", vr.GetErrorMessages())
			return nil, stdErr
		}
	}

	if err := r.store.Put(ctx, resourceType, key, data, SourceManual); err != nil {
		return nil, err
	}

	metrics.ResolverLookups.WithLabelValues(resourceType, SourceManual).Inc()
	return &LookupResult{
		Success:    true,
		Data:       data,
		Source:     SourceManual,
		TiersTried: []string{SourceManual},
	}, nil
}
