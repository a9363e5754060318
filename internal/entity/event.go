package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type Event struct {
	ID           uuid.UUID `json:"id" db:"id"`
	VisitorID    uuid.UUID `json:"visitorId" db:"visitor_id"`
	SessionID    uuid.UUID `json:"sessionId" db:"session_id"`
	OccurredAt   time.Time `json:"occurredAt" db:"occurred_at"`
	Name         string    `json:"name" db:"name"`
	SourceType   *string   `json:"sourceType" db:"source_type"`
	PageURL      *string   `json:"pageUrl" db:"page_url"`
	Referrer     *string   `json:"referrer" db:"referrer"`
	SearchTerm   *string   `json:"searchTerm" db:"search_term"`
	OrderID      *string   `json:"orderId" db:"order_id"`
	Value        *float64  `json:"value" db:"value"`
	Currency     *string   `json:"currency" db:"currency"`
	IsConversion bool      `json:"isConversion" db:"is_conversion"`
	Properties   JSONMap   `json:"properties" db:"properties"`
	Items        JSONArray `json:"items" db:"items"`
	Email        *string   `json:"email" db:"email"`
	Phone        *string   `json:"phone" db:"phone"`
	FirstName    *string   `json:"firstName" db:"first_name"`
	LastName     *string   `json:"lastName" db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type EventPayload struct {
	ID           *string                `json:"id"`
	Name         string                 `json:"name"`
	Timestamp    *string                `json:"timestamp"`
	SourceType   *string                `json:"sourceType"`
	URL          *string                `json:"url"`
	OrderID      *string                `json:"orderId"`
	Value        *float64               `json:"value"`
	Currency     *string                `json:"currency"`
	IsConversion *bool                  `json:"isConversion"`
	Email        *string                `json:"email"`
	Phone        *string                `json:"phone"`
	FirstName    *string                `json:"firstName"`
	LastName     *string                `json:"lastName"`
	Properties   map[string]interface{} `json:"properties"`
	Items        []interface{}          `json:"items"`
}

// TrackRequest тело одного вызова пикселя. Обязательно только event.name.
type TrackRequest struct {
	Visitor    *VisitorPayload `json:"visitor"`
	Session    *SessionPayload `json:"session"`
	Event      *EventPayload   `json:"event" binding:"required"`
	Page       *PagePayload    `json:"page"`
	Device     *DevicePayload  `json:"device"`
	UTM        *UTMPayload     `json:"utm"`
	Touchpoint *UTMPayload     `json:"touchpoint"`
}

type TrackResponse struct {
	Message   string `json:"message"`
	VisitorID string `json:"visitorId"`
	SessionID string `json:"sessionId"`
	EventID   string `json:"eventId"`
}
