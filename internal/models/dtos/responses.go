package dtos

// APIResponse is the envelope every portal endpoint answers with
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Code         string `json:"code,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// UpstreamError is the body shape of a failed Koomy API call
type UpstreamError struct {
	Error string `json:"error"`
}
