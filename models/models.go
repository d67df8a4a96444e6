package models

import (
	"encoding/json"
	"time"
)

// Item is one stored conversation fragment. The payload is opaque to the
// core: it is persisted and returned verbatim, ordered by insertion.
type Item struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Message is the conventional shape of an Item payload. The store never
// depends on it; stages use it when building model context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessageItem wraps a role/content pair as an opaque Item payload.
func NewMessageItem(role, content string) Item {
	data, _ := json.Marshal(Message{Role: role, Content: content})
	return Item{Data: data}
}

// UserProfile carries the caller's identity through every stage. Topic is
// only populated by the interactive CLI entry point.
type UserProfile struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	UID   string `json:"uid"`
	Topic string `json:"topic,omitempty"`
}

// RelevanceVerdict is the guardrail's classification of one user input.
type RelevanceVerdict struct {
	IsRelevant bool `json:"is_relevant"`
}

// ResearchPlan is the query planner's output: one master query plus a
// fixed-size set of refined sub-queries.
type ResearchPlan struct {
	MasterQuery    string   `json:"master_query"`
	RefinedQueries []string `json:"refined_queries"`
	ResearchPlan   string   `json:"research_plan,omitempty"`
	Subtopics      []string `json:"subtopics,omitempty"`
	Assumptions    []string `json:"assumptions,omitempty"`
}

// SourceItem is one retrieved search result.
type SourceItem struct {
	URL          string  `json:"url"`
	Title        string  `json:"title,omitempty"`
	Domain       string  `json:"domain,omitempty"`
	PublishedAt  string  `json:"published_at,omitempty"`
	Snippet      string  `json:"snippet,omitempty"`
	MatchedQuery string  `json:"matched_query,omitempty"`
	Score        float64 `json:"score"`
	Subtopic     string  `json:"subtopic,omitempty"`
}

// SearchResults binds a set of sources to the master query they served.
type SearchResults struct {
	MasterQuery string       `json:"master_query"`
	Sources     []SourceItem `json:"sources"`
}

// ExtractedDoc is one extracted unit of web content.
type ExtractedDoc struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Content     string `json:"content"`
}
