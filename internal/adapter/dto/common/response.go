package common

// ListResponse wraps a list payload with its length
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// NewListResponse builds a ListResponse for n items
func NewListResponse(items interface{}, n int) *ListResponse {
	return &ListResponse{Items: items, Count: n}
}
