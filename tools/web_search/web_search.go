package web_search

import (
	"context"
	"errors"
	"time"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/tools/web_search/tavily"
)

// Searcher performs one ranked web search.
type Searcher interface {
	Search(ctx context.Context, q string, maxResults int) ([]models.SourceItem, error)
}

// Extractor pulls readable content from one URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (models.ExtractedDoc, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewSearcher(provider Provider, apiKey, baseURL string, timeout time.Duration) (Searcher, error) {
	switch provider {
	case TavilyProvider:
		return tavily.New(apiKey, baseURL, timeout), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

func NewExtractor(provider Provider, apiKey, baseURL string, timeout time.Duration) (Extractor, error) {
	switch provider {
	case TavilyProvider:
		return tavily.New(apiKey, baseURL, timeout), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
