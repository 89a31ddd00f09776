// internal/resolver/catalog_test.go
package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_LookupExact(t *testing.T) {
	catalog := NewCatalog()

	data, ok := catalog.Lookup(TypeTemplate, "sat report")
	require.True(t, ok)
	assert.Equal(t, "Site Acceptance Test Report", data["name"])
}

func TestCatalog_LookupContainment(t *testing.T) {
	catalog := NewCatalog()

	// Query contains the entry key.
	data, ok := catalog.Lookup(TypeSignal, "main line pressure transmitter pt-101")
	require.True(t, ok)
	assert.Equal(t, "AI", data["signalType"])

	// Entry key contains the query.
	data, ok = catalog.Lookup(TypeComponent, "compactlogix")
	require.True(t, ok)
	assert.Equal(t, "Rockwell Automation", data["vendor"])
}

func TestCatalog_LookupMiss(t *testing.T) {
	catalog := NewCatalog()

	_, ok := catalog.Lookup(TypeSignal, "quantum entanglement sensor")
	assert.False(t, ok)

	_, ok = catalog.Lookup("unknown_type", "anything")
	assert.False(t, ok)
}

func TestCatalog_LoadSeed(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	seed := `resources:
  signal:
    Turbidity Analyzer:
      signalType: AI
      units: NTU
    pressure transmitter:
      signalType: DO
      note: must not replace the built-in entry
  gasket:
    spiral wound:
      material: graphite
`
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))

	catalog := NewCatalog()
	require.NoError(t, catalog.LoadSeed(seedPath))

	data, ok := catalog.Lookup(TypeSignal, "turbidity analyzer")
	require.True(t, ok)
	assert.Equal(t, "NTU", data["units"])

	// Built-in entries win on key collision.
	data, ok = catalog.Lookup(TypeSignal, "pressure transmitter")
	require.True(t, ok)
	assert.Equal(t, "AI", data["signalType"])

	// Seeds can introduce whole new resource types.
	data, ok = catalog.Lookup("gasket", "spiral wound")
	require.True(t, ok)
	assert.Equal(t, "graphite", data["material"])
}

func TestCatalog_LoadSeedErrors(t *testing.T) {
	catalog := NewCatalog()

	assert.Error(t, catalog.LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")))

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("{not yaml: ["), 0o644))
	assert.Error(t, catalog.LoadSeed(badPath))
}
