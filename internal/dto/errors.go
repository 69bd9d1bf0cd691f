package dto

type ErrorResponse struct {
	Error string `json:"error" example:"Question is required"`
}
