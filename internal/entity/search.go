package entity

// SearchColumnAnswer is the corpus column returned as retrieved context
const SearchColumnAnswer = "answer"

// CortexSearchRequest is the body of a Cortex Search service query
type CortexSearchRequest struct {
	Query   string         `json:"query"`
	Columns []string       `json:"columns"`
	Filter  map[string]any `json:"filter"`
	Limit   int            `json:"limit"`
}

// CortexSearchResponse holds the ordered result rows, each keyed by column name
type CortexSearchResponse struct {
	Results   []map[string]any `json:"results"`
	RequestID string           `json:"request_id,omitempty"`
}
