// internal/resolver/assisted.go
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"report-intake/internal/common/genai"
)

// Searcher is the assisted-lookup capability (tier 3). A nil payload
// with nil error means the searcher ran and found nothing.
type Searcher interface {
	Search(ctx context.Context, resourceType, query, vendor string) (map[string]interface{}, error)
}

// GenAISearcher asks the text-generation service to identify a
// resource.
type GenAISearcher struct {
	client *genai.Client
}

func NewGenAISearcher(client *genai.Client) *GenAISearcher {
	return &GenAISearcher{client: client}
}

func (s *GenAISearcher) Search(ctx context.Context, resourceType, query, vendor string) (map[string]interface{}, error) {
	return s.client.SearchResource(ctx, resourceType, query, vendor)
}

// ElasticsearchSearcher queries a resource index. Useful when a site
// maintains a searchable library of templates and datasheets.
type ElasticsearchSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSearcher(client *elasticsearch.Client, index string) *ElasticsearchSearcher {
	return &ElasticsearchSearcher{client: client, index: index}
}

func (s *ElasticsearchSearcher) Search(ctx context.Context, resourceType, query, vendor string) (map[string]interface{}, error) {
	must := []map[string]interface{}{
		{"match": map[string]interface{}{"name": query}},
		{"term": map[string]interface{}{"resource_type": resourceType}},
	}
	if vendor != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{"vendor": vendor},
		})
	}

	body, err := json.Marshal(map[string]interface{}{
		"size":  1,
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	})
	if err != nil {
		return nil, fmt.Errorf("build search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(parsed.Hits.Hits) == 0 {
		return nil, nil
	}
	return parsed.Hits.Hits[0].Source, nil
}
