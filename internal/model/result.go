package model

// EvaluatedResult is one scored question/answer pair. Produced once
// during evaluation and immutable afterward.
type EvaluatedResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}

// PerformanceSummary is the narrative produced from the full result set
// (or from subject + score + total in quiz mode).
type PerformanceSummary struct {
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
}
