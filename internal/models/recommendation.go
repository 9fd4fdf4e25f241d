package models

// Recommendation type constants
const (
	RecommendationDiversification = "diversification"
	RecommendationConcentration   = "concentration"
	RecommendationOpportunity     = "opportunity"
	RecommendationWarning         = "warning"
)

// Priority constants
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is a single actionable guidance item. Recommendations are
// generated fresh on each aggregation pass and never persisted.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}
