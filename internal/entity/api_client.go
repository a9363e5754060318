package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type APIClient struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	APIKey     string     `json:"apiKey" db:"api_key"`
	IsActive   bool       `json:"isActive" db:"is_active"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	LastUsedAt *time.Time `json:"lastUsedAt" db:"last_used_at"`
}

// APIClientPublic скрывает сам ключ
type APIClientPublic struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

type CreateAPIClientRequest struct {
	Name string `json:"name" binding:"required"`
}

type APIClientFilter struct {
	IsActive *bool `form:"isActive"`
	Limit    int   `form:"limit"`
	Offset   int   `form:"offset"`
}
