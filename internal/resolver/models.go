// Package resolver finds named resources (report templates, signal
// definitions, hardware components) through an ordered cascade of
// lookup tiers, persisting anything discovered so repeated queries
// converge on the cheapest tier.
package resolver

import "strings"

// Resource type tags accepted by the resolver.
const (
	TypeTemplate  = "template"
	TypeSignal    = "signal"
	TypeComponent = "component"
)

// Source identifies the tier that produced a result.
const (
	SourceStore    = "store"
	SourceCache    = "cache"
	SourceAssisted = "assisted"
	SourceManual   = "manual"
	SourceNone     = "none"
)

// LookupQuery is a normalized resource request.
type LookupQuery struct {
	ResourceType string `json:"resourceType"`
	Query        string `json:"query"`
	Vendor       string `json:"vendor,omitempty"`
}

// LookupResult is the outcome of one cascade run.
type LookupResult struct {
	Success        bool                   `json:"success"`
	Data           map[string]interface{} `json:"data,omitempty"`
	Source         string                 `json:"source"`
	ManualRequired bool                   `json:"manualRequired"`
	TiersTried     []string               `json:"tiersTried"`
	Message        string                 `json:"message,omitempty"`
}

// NormalizeQuery canonicalizes a query before any tier sees it, so
// tiers 1-3 all look up identical input.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
