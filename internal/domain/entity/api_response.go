package entity

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"current_status,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code string, message string) *APIResponse {
	return &APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}

// NewDomainErrorResponse keeps the authoritative status visible on state
// errors so the caller can reconcile its view.
func NewDomainErrorResponse(err *DomainError) *APIResponse {
	return &APIResponse{
		Success: false,
		Message: err.Message,
		Error: &APIError{
			Code:    err.Code,
			Message: err.Message,
			Status:  string(err.Status),
		},
	}
}
