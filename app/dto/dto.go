// Package dto contains request and response data transfer objects for the API layer
package dto

// APIResponse is the envelope for all API responses
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Error   ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries a machine-readable error code plus optional details
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Pagination describes the window of a list response
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// MarketInfo describes one supported market
type MarketInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// DemographicInfo describes one (gender, age band) pair
type DemographicInfo struct {
	Gender string `json:"gender"`
	Age    string `json:"age"`
	Label  string `json:"label"`
}
