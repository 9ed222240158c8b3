package response

// StandardApiResponse is the envelope every JSON endpoint answers with.
// Data carries the payload on success; Errors carries validation or error
// details on failure. The two are mutually exclusive in practice.
type StandardApiResponse struct {
	Status     string      `json:"status"` // "success" or "error"
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
