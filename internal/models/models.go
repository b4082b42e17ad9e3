package models

import "time"

// Document is a unit of ingested text. It is immutable once stored; the
// ID is generated at ingestion time.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// Chunk is a bounded sub-span of a document's text, the unit of
// embedding. Index is the chunk's 0-based position within its document.
type Chunk struct {
	Text       string
	Index      int
	DocumentID string
	Metadata   map[string]interface{}
}

// IndexRecord pairs a chunk's text and metadata with its embedding. One
// record per chunk; the vector index owns these exclusively.
type IndexRecord struct {
	Vector   []float32
	Text     string
	Metadata map[string]interface{}
}

// SearchResult is one retrieval hit, produced per query and never
// persisted. Similarity is cosine similarity against the query vector.
type SearchResult struct {
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Similarity float32                `json:"similarity"`
}

// QueryResult is the response of a knowledge query.
type QueryResult struct {
	Answer         string         `json:"answer"`
	Sources        []SearchResult `json:"sources"`
	ProcessingTime int64          `json:"processingTime"`
	Model          string         `json:"model"`
}

// DocumentResult is the response of a document ingestion.
type DocumentResult struct {
	ID        string `json:"id"`
	Chunks    int    `json:"chunks"`
	Processed bool   `json:"processed"`
	Timestamp string `json:"timestamp"`
}

// ChatResult is the response of a direct chat turn.
type ChatResult struct {
	Response  string `json:"response"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"`
}
