package helpers

type ApiResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Total     int         `json:"total,omitempty"`
	Facets    interface{} `json:"facets,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

// ListResponse wraps a result list with its total and the facet options it was drawn from.
func ListResponse(data interface{}, total int, facets interface{}) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Total:   total,
		Facets:  facets,
	}
}
