package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // ADMIN / AUDITOR / VIEWER
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
