package web_fetch

import (
	"errors"
	"time"

	"github.com/skillscout/skillscout/tools/web_fetch/chromedp"
)

const (
	DefaultTimeout  = 15 * time.Second
	MaxCharsDefault = 20000
)

type FetcherType string

const (
	ChromedpFetcherType FetcherType = "chromedp"
)

var ErrUnsupportedFetcher = errors.New("unsupported fetcher type")

// NewFetcher builds a headless-browser content extractor. It satisfies the
// research connector's Extractor contract, for deployments where the search
// provider's extract endpoint is unavailable.
func NewFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (*chromedp.Fetch, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	switch fetcherType {
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, ErrUnsupportedFetcher
	}
}
