package domain

import "errors"

// Error kinds surfaced by the pipeline. Callers match them with errors.Is;
// adapters wrap them with context via fmt.Errorf.
var (
	// ErrInvalidLink marks an article link without a usable scheme. Terminal,
	// never retried.
	ErrInvalidLink = errors.New("invalid article link")

	// ErrProxySourceUnavailable marks a proxy-list refresh that could not
	// reach its source.
	ErrProxySourceUnavailable = errors.New("proxy source unavailable")

	// ErrPoolExhausted marks a refresh that completed but yielded no usable
	// endpoints.
	ErrPoolExhausted = errors.New("proxy pool exhausted")

	// ErrFetchExhausted marks a fetch that ran out of retry budget.
	ErrFetchExhausted = errors.New("fetch attempts exhausted")

	// ErrMissingHeadline and ErrMissingBody mark a page whose shape does not
	// match the expected article markup (malformed or paywalled page).
	ErrMissingHeadline = errors.New("article headline not found")
	ErrMissingBody     = errors.New("article body not found")

	// ErrInvalidArticleText marks extractor input that violates its contract.
	ErrInvalidArticleText = errors.New("invalid article text")
)
