package exportapi

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// ErrorResponse describes JSON error responses. The available lists are
// populated only when an enumerated request value was rejected.
type ErrorResponse struct {
	Error            string   `json:"error"`
	Code             string   `json:"code,omitempty"`
	AvailableTypes   []string `json:"available_types,omitempty"`
	AvailableFormats []string `json:"available_formats,omitempty"`
	Details          string   `json:"details,omitempty"`
}
