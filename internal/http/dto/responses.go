package dto

import (
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
)

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type Paging struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

type ListResponse[T any] struct {
	Paging Paging `json:"paging"`
	Items  []T    `json:"items"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type InsertedResponse struct {
	Inserted int `json:"inserted"`
}

// APIKeyResponse carries the raw key. It is shown exactly once.
type APIKeyResponse struct {
	APIKey   string        `json:"api_key"`
	Key      models.APIKey `json:"key"`
	TenantID uuid.UUID     `json:"tenant_id"`
}
