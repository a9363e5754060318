package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type Visitor struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ExternalID  *string   `json:"externalId" db:"external_id"`
	Email       *string   `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	FirstName   *string   `json:"firstName" db:"first_name"`
	LastName    *string   `json:"lastName" db:"last_name"`
	Traits      JSONMap   `json:"traits" db:"traits"`
	FirstSeenAt time.Time `json:"firstSeenAt" db:"first_seen_at"`
	LastSeenAt  time.Time `json:"lastSeenAt" db:"last_seen_at"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// VisitorPayload то, что присылает пиксель, все поля опциональны
type VisitorPayload struct {
	ID         *string                `json:"id"`
	ExternalID *string                `json:"externalId"`
	Email      *string                `json:"email"`
	Phone      *string                `json:"phone"`
	FirstName  *string                `json:"firstName"`
	LastName   *string                `json:"lastName"`
	Traits     map[string]interface{} `json:"traits"`
	Address    map[string]interface{} `json:"address"`
}
