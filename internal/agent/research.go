package agent

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/tools/web_search"
)

// RelevanceThreshold is the minimum provider score for a result to be
// extracted. Strictly exclusive: a score of exactly 0.8 is dropped.
const RelevanceThreshold = 0.8

// Research fans out a batch of search queries, filters to relevant results,
// then fans out content extraction for the surviving URLs. Stateless
// between invocations.
type Research struct {
	searcher   web_search.Searcher
	extractor  web_search.Extractor
	maxResults int
	logger     *log.Logger
}

func NewResearch(searcher web_search.Searcher, extractor web_search.Extractor, maxResults int, logger *log.Logger) *Research {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	}
	return &Research{searcher: searcher, extractor: extractor, maxResults: maxResults, logger: logger}
}

// Collect runs the search/extract fan-out. A single failing call fails the
// whole batch; callers get no partial results. A URL surfacing under
// multiple queries is extracted once per occurrence.
func (r *Research) Collect(ctx context.Context, queries []string) ([]models.ExtractedDoc, error) {
	var mu sync.Mutex
	var sources []models.SourceItem

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			results, err := r.searcher.Search(gctx, q, r.maxResults)
			if err != nil {
				return err
			}
			mu.Lock()
			sources = append(sources, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var relevant []models.SourceItem
	for _, s := range sources {
		if s.Score > RelevanceThreshold {
			relevant = append(relevant, s)
		}
	}
	r.logger.Printf("found %d relevant sources out of %d results", len(relevant), len(sources))

	docs := make([]models.ExtractedDoc, len(relevant))
	g, gctx = errgroup.WithContext(ctx)
	for i, src := range relevant {
		i, src := i, src
		g.Go(func() error {
			doc, err := r.extractor.Extract(gctx, src.URL)
			if err != nil {
				return err
			}
			if doc.Title == "" {
				doc.Title = src.Title
			}
			if doc.PublishedAt == "" {
				doc.PublishedAt = src.PublishedAt
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
