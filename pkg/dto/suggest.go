package dto

type SuggestToolsRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count,omitempty"`
}

type SuggestedToolResponse struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
