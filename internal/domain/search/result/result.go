package result

import "encoding/json"

// Hit is a single search hit.
type Hit struct {
	index  string
	id     string
	score  float64
	source json.RawMessage
}

// NewHit creates a search hit.
func NewHit(index, id string, score float64, source json.RawMessage) Hit {
	return Hit{index: index, id: id, score: score, source: source}
}

// Index returns the index the hit came from.
func (h *Hit) Index() string { return h.index }

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Source returns the raw document source.
func (h *Hit) Source() json.RawMessage { return h.source }

// Result is one page of search hits.
type Result struct {
	total    int64
	relation string
	maxScore float64
	tookMS   int64
	hits     []Hit
}

// New creates a search result page.
func New(total int64, relation string, maxScore float64, tookMS int64, hits []Hit) Result {
	return Result{total: total, relation: relation, maxScore: maxScore, tookMS: tookMS, hits: hits}
}

// Total returns the total hit count (a lower bound when Relation is "gte").
func (r *Result) Total() int64 { return r.total }

// Relation returns "eq" or "gte".
func (r *Result) Relation() string { return r.relation }

// MaxScore returns the best score on the page, 0 when unscored.
func (r *Result) MaxScore() float64 { return r.maxScore }

// TookMS returns the cluster-side query time.
func (r *Result) TookMS() int64 { return r.tookMS }

// Hits returns the hits in rank order.
func (r *Result) Hits() []Hit { return r.hits }
