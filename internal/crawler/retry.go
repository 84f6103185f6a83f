package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrFetchExhausted is returned when every attempt timed out
var ErrFetchExhausted = errors.New("fetch retries exhausted")

// RetryFetcher races each fetch attempt against a timer. When the timer
// wins, a new attempt starts; the slow one is not cancelled and its late
// result is dropped.
type RetryFetcher struct {
	fetcher Fetcher
	retries int
	timeout time.Duration
}

type fetchResult struct {
	page *Page
	err  error
}

// NewRetryFetcher wraps fetcher with at most retries attempts of timeout each
func NewRetryFetcher(fetcher Fetcher, retries int, timeout time.Duration) *RetryFetcher {
	return &RetryFetcher{
		fetcher: fetcher,
		retries: retries,
		timeout: timeout,
	}
}

// Get fetches url. The first attempt to complete decides the outcome, be it
// a page or a network error.
func (r *RetryFetcher) Get(ctx context.Context, url string, headers http.Header) (*Page, error) {
	return r.attempt(ctx, url, headers, r.retries)
}

func (r *RetryFetcher) attempt(ctx context.Context, url string, headers http.Header, retries int) (*Page, error) {
	if retries <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrFetchExhausted, url)
	}

	// Buffered so an abandoned attempt can always deliver and exit
	results := make(chan fetchResult, 1)
	go func() {
		page, err := r.fetcher.Fetch(ctx, url, headers)
		results <- fetchResult{page: page, err: err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.page, res.err
	case <-timer.C:
		return r.attempt(ctx, url, headers, retries-1)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
