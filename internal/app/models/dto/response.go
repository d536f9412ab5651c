package dto

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// APIResponse wraps either data or an error
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// MediaUploadResponse is returned by the media upload collaborator
type MediaUploadResponse struct {
	Code    int    `json:"code" example:"200"`
	Message string `json:"message" example:"upload successful"`
	Result  string `json:"result" example:"5f0c1e9a-2f5e-4c83-a0b1-7b1f0c7bb9a1.png"`
}

// UploadedMedia is what the portal hands back after proxying an upload
type UploadedMedia struct {
	ImageID    string `json:"imageId"`
	DisplayURL string `json:"displayUrl"`
}
