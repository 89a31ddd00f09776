// internal/resolver/catalog.go
package resolver

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the curated in-memory tier: a small per-type map of known
// resources keyed by normalized name. Read-only after construction,
// safe for unsynchronized concurrent reads.
type Catalog struct {
	entries map[string]map[string]map[string]interface{}
}

// NewCatalog builds the built-in curated entries.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: map[string]map[string]map[string]interface{}{
			TypeTemplate: {
				"fat report": {
					"name":     "Factory Acceptance Test Report",
					"sections": []interface{}{"cover", "scope", "purpose", "digital_signals", "analog_signals", "conclusion"},
				},
				"sat report": {
					"name":     "Site Acceptance Test Report",
					"sections": []interface{}{"cover", "scope", "purpose", "equipment", "alarms", "punch_list", "conclusion"},
				},
				"loop check report": {
					"name":     "Loop Check Report",
					"sections": []interface{}{"cover", "analog_signals", "calibration", "conclusion"},
				},
			},
			TypeSignal: {
				"pressure transmitter": {
					"signalType": "AI", "units": "bar", "typicalRange": "0-10",
				},
				"temperature transmitter": {
					"signalType": "AI", "units": "degC", "typicalRange": "0-150",
				},
				"pump run feedback": {
					"signalType": "DI", "states": []interface{}{"STOPPED", "RUNNING"},
				},
				"valve limit switch": {
					"signalType": "DI", "states": []interface{}{"CLOSED", "OPEN"},
				},
				"flow totalizer": {
					"signalType": "AI", "units": "m3/h",
				},
			},
			TypeComponent: {
				"siemens s7-1500": {
					"vendor": "Siemens", "family": "SIMATIC S7-1500", "category": "PLC",
				},
				"allen bradley compactlogix": {
					"vendor": "Rockwell Automation", "family": "CompactLogix 5380", "category": "PLC",
				},
				"schneider m580": {
					"vendor": "Schneider Electric", "family": "Modicon M580", "category": "PLC",
				},
				"wago 750": {
					"vendor": "WAGO", "family": "750 Series", "category": "Remote I/O",
				},
			},
		},
	}
}

// seedFile is the on-disk format for extending the curated catalog.
type seedFile struct {
	Resources map[string]map[string]map[string]interface{} `yaml:"resources"`
}

// LoadSeed merges additional curated entries from a YAML file. Existing
// built-in entries are kept when keys collide.
func (c *Catalog) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog seed: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse catalog seed: %w", err)
	}

	for resourceType, entries := range seed.Resources {
		if c.entries[resourceType] == nil {
			c.entries[resourceType] = make(map[string]map[string]interface{})
		}
		for key, data := range entries {
			norm := NormalizeQuery(key)
			if _, exists := c.entries[resourceType][norm]; !exists {
				c.entries[resourceType][norm] = data
			}
		}
	}
	return nil
}

// Lookup checks a normalized query against the curated entries: exact
// key first, then substring containment either way.
func (c *Catalog) Lookup(resourceType, key string) (map[string]interface{}, bool) {
	entries, ok := c.entries[resourceType]
	if !ok {
		return nil, false
	}

	if data, ok := entries[key]; ok {
		return data, true
	}

	for entryKey, data := range entries {
		if strings.Contains(key, entryKey) || strings.Contains(entryKey, key) {
			return data, true
		}
	}
	return nil, false
}
