package handler

// CreateCaseRequest opens a new case in a (jurisdiction, product) partition.
type CreateCaseRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Product      string `json:"product"`
}

// AnswerRequest merges a partial fact update onto the case. Facts is the flat
// wizard fact dictionary; keys absent from it are never touched.
type AnswerRequest struct {
	Facts map[string]any `json:"facts"`
}
