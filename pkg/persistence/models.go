package persistence

import "time"

// Document represents one ingested source text, deduplicated by content hash.
type Document struct {
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHash string    `json:"content_hash"`
	DocType     string    `json:"doc_type"`
	ID          int64     `json:"id"`
}

// Document types.
const (
	DocTypeDocument = "document"
	DocTypeSentence = "sentence"
)

// Sentence represents one analyzable unit of a document, deduplicated by
// (doc_id, text_hash).
type Sentence struct {
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	TextHash  string    `json:"text_hash"`
	ID        int64     `json:"id"`
	DocID     int64     `json:"doc_id"`
	Position  int       `json:"position"`
}

// SentimentRecord is the persisted analysis result for one
// (sentence, content fingerprint) pair. The pair is unique by index; calls
// counts how many provider calls produced the current row.
//
//nolint:govet // struct alignment optimization not critical for this type
type SentimentRecord struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Sentiment  *string   `json:"sentiment,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	TextHash   string    `json:"text_hash"`
	TraceID    string    `json:"trace_id"`
	ID         int64     `json:"id"`
	SentenceID int64     `json:"sentence_id"`
	Calls      int       `json:"calls"`
}

// HasResult reports whether the record carries a completed analysis.
func (r *SentimentRecord) HasResult() bool {
	return r.Sentiment != nil
}

// Upsert outcome statuses.
const (
	StatusCached  = "cached"
	StatusCreated = "created"
	StatusUpdated = "updated"
)
