package models

// Summary is the human-readable description attached to an uploaded workflow.
type Summary struct {
	Purpose            string   `json:"purpose"`
	Description        string   `json:"description"`
	SuggestedEndpoints []string `json:"suggested_endpoints"`
}
