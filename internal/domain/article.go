package domain

import "time"

// FeedEntry is one feed item pointing at a single press-release article.
// The published timestamp comes from the feed's updated field and is naive UTC.
type FeedEntry struct {
	Link        string
	Headline    string
	PublishedAt time.Time
}

// Article holds the fields extracted from a fetched article page.
type Article struct {
	Headline string
	Body     string
}

// Record is the finished unit handed to the persistence sink. Ticker is nil
// when no symbol was found in the article text.
type Record struct {
	Ticker      *string
	Headline    string
	PublishedAt time.Time
	Link        string
	ArticleText string
}
