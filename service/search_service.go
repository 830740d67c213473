package service

import (
	"context"
	"fmt"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// SearchResult represents a single search result from Google Custom Search API
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchService looks up vendors on the web through Google Custom Search,
// used to enrich vendor records the invoice itself does not cover.
type SearchService struct {
	apiKey   string
	engineID string
}

func NewSearchService(apiKey, engineID string) *SearchService {
	return &SearchService{
		apiKey:   apiKey,
		engineID: engineID,
	}
}

// LookupVendor searches for public information about the named vendor.
func (s *SearchService) LookupVendor(ctx context.Context, vendorName string) ([]SearchResult, error) {
	query := fmt.Sprintf("%s company official website contact", vendorName)
	return s.search(ctx, query)
}

func (s *SearchService) search(ctx context.Context, query string) ([]SearchResult, error) {
	opts := []option.ClientOption{}
	if s.apiKey != "" {
		opts = append(opts, option.WithAPIKey(s.apiKey))
	}
	searchService, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %v", err)
	}

	search := searchService.Cse.List()
	search.Q(query)
	search.Cx(s.engineID)
	search.Num(5)

	result, err := search.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %v", err)
	}

	searchResults := make([]SearchResult, 0)
	for _, item := range result.Items {
		searchResults = append(searchResults, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	return searchResults, nil
}
