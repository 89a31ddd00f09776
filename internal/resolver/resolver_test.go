// internal/resolver/resolver_test.go
package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory ResourceStore for cascade tests.
type memoryStore struct {
	entries map[string]map[string]interface{}
	getErr  error
	putErr  error
	puts    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]map[string]interface{})}
}

func storeKey(resourceType, key string) string {
	return resourceType + "/" + key
}

func (m *memoryStore) Get(ctx context.Context, resourceType, key string) (map[string]interface{}, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	data, ok := m.entries[storeKey(resourceType, key)]
	return data, ok, nil
}

func (m *memoryStore) Put(ctx context.Context, resourceType, key string, data map[string]interface{}, source string) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[storeKey(resourceType, key)] = data
	return nil
}

type stubSearcher struct {
	data  map[string]interface{}
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, resourceType, query, vendor string) (map[string]interface{}, error) {
	s.calls++
	return s.data, s.err
}

func newTestResolver(store ResourceStore, searchers ...Searcher) *Resolver {
	return New(store, NewCatalog(), searchers, time.Second, nil)
}

func TestResolve_StoreHitShortCircuits(t *testing.T) {
	store := newMemoryStore()
	store.entries[storeKey(TypeSignal, "custom flow switch")] = map[string]interface{}{"signalType": "DI"}
	searcher := &stubSearcher{data: map[string]interface{}{"should": "not be reached"}}
	r := newTestResolver(store, searcher)

	result := r.Resolve(context.Background(), TypeSignal, "Custom  Flow Switch", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceStore, result.Source)
	assert.Equal(t, []string{SourceStore}, result.TiersTried)
	assert.Zero(t, searcher.calls)
}

func TestResolve_CatalogHitConvergesToStore(t *testing.T) {
	store := newMemoryStore()
	r := newTestResolver(store)
	ctx := context.Background()

	first := r.Resolve(ctx, TypeTemplate, "FAT Report", "")
	require.True(t, first.Success)
	assert.Equal(t, SourceCache, first.Source)
	assert.Equal(t, []string{SourceStore, SourceCache}, first.TiersTried)
	assert.Equal(t, "Factory Acceptance Test Report", first.Data["name"])

	// The hit was persisted back, so the identical query now resolves at
	// tier 1.
	second := r.Resolve(ctx, TypeTemplate, "fat report", "")
	require.True(t, second.Success)
	assert.Equal(t, SourceStore, second.Source)
	assert.Equal(t, []string{SourceStore}, second.TiersTried)
}

func TestResolve_CatalogSubstringMatch(t *testing.T) {
	r := newTestResolver(newMemoryStore())

	result := r.Resolve(context.Background(), TypeComponent, "Siemens S7-1500 CPU 1516", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceCache, result.Source)
	assert.Equal(t, "Siemens", result.Data["vendor"])
}

func TestResolve_AssistedHitIsPersisted(t *testing.T) {
	store := newMemoryStore()
	searcher := &stubSearcher{data: map[string]interface{}{"signalType": "AI", "units": "pH"}}
	r := newTestResolver(store, searcher)
	ctx := context.Background()

	result := r.Resolve(ctx, TypeSignal, "ph analyzer", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceAssisted, result.Source)
	assert.Equal(t, []string{SourceStore, SourceCache, SourceAssisted}, result.TiersTried)
	assert.Equal(t, 1, searcher.calls)

	second := r.Resolve(ctx, TypeSignal, "PH Analyzer", "")
	assert.Equal(t, SourceStore, second.Source)
	assert.Equal(t, 1, searcher.calls)
}

func TestResolve_SecondSearcherUsedWhenFirstFails(t *testing.T) {
	broken := &stubSearcher{err: errors.New("upstream unavailable")}
	working := &stubSearcher{data: map[string]interface{}{"vendor": "Endress+Hauser"}}
	r := newTestResolver(newMemoryStore(), broken, working)

	result := r.Resolve(context.Background(), TypeComponent, "promag 400", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceAssisted, result.Source)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestResolve_FullMissRequiresManual(t *testing.T) {
	searcher := &stubSearcher{} // runs, finds nothing
	r := newTestResolver(newMemoryStore(), searcher)

	result := r.Resolve(context.Background(), TypeSignal, "entirely unknown thing", "")

	assert.False(t, result.Success)
	assert.True(t, result.ManualRequired)
	assert.Equal(t, SourceNone, result.Source)
	assert.Equal(t, []string{SourceStore, SourceCache, SourceAssisted}, result.TiersTried)
	assert.Contains(t, result.Message, "entirely unknown thing")
}

func TestResolve_NoSearchersSkipsAssistedTier(t *testing.T) {
	r := newTestResolver(newMemoryStore())

	result := r.Resolve(context.Background(), TypeSignal, "entirely unknown thing", "")

	assert.True(t, result.ManualRequired)
	assert.Equal(t, []string{SourceStore, SourceCache}, result.TiersTried)
}

func TestResolve_StoreErrorDegradesToNextTier(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	r := newTestResolver(store)

	result := r.Resolve(context.Background(), TypeTemplate, "sat report", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceCache, result.Source)
}

func TestResolve_PersistBackFailureDoesNotFailLookup(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("disk full")
	r := newTestResolver(store)

	result := r.Resolve(context.Background(), TypeTemplate, "fat report", "")

	require.True(t, result.Success)
	assert.Equal(t, SourceCache, result.Source)
	assert.Equal(t, 1, store.puts)
}

func TestSubmitManual_ValidPayloadStored(t *testing.T) {
	store := newMemoryStore()
	r := newTestResolver(store)
	ctx := context.Background()

	result, err := r.SubmitManual(ctx, TypeSignal, "Vibration Probe", map[string]interface{}{
		"signalType": "AI",
		"units":      "mm/s",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, SourceManual, result.Source)

	lookup := r.Resolve(ctx, TypeSignal, "vibration probe", "")
	require.True(t, lookup.Success)
	assert.Equal(t, SourceStore, lookup.Source)
	assert.Equal(t, "mm/s", lookup.Data["units"])
}

func TestSubmitManual_InvalidPayloadRejected(t *testing.T) {
	store := newMemoryStore()
	r := newTestResolver(store)

	tests := []struct {
		name         string
		resourceType string
		data         map[string]interface{}
	}{
		{"signal without type", TypeSignal, map[string]interface{}{"units": "bar"}},
		{"signal with bad type", TypeSignal, map[string]interface{}{"signalType": "ANALOG"}},
		{"template without name", TypeTemplate, map[string]interface{}{"sections": []interface{}{"cover"}}},
		{"component without vendor", TypeComponent, map[string]interface{}{"family": "M580"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.SubmitManual(context.Background(), tt.resourceType, "some key", tt.data)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, store.entries)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "fat report", NormalizeQuery("  FAT   Report "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
