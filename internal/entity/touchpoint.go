package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type Touchpoint struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	VisitorID  uuid.UUID  `json:"visitorId" db:"visitor_id"`
	SessionID  *uuid.UUID `json:"sessionId" db:"session_id"`
	OccurredAt time.Time  `json:"occurredAt" db:"occurred_at"`
	Source     *string    `json:"source" db:"source"`
	Medium     *string    `json:"medium" db:"medium"`
	Campaign   *string    `json:"campaign" db:"campaign"`
	Content    *string    `json:"content" db:"content"`
	Term       *string    `json:"term" db:"term"`
	Metadata   JSONMap    `json:"metadata" db:"metadata"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// UTMPayload приходит либо как utm{}, либо как явный touchpoint{}
type UTMPayload struct {
	Source   *string `json:"source"`
	Medium   *string `json:"medium"`
	Campaign *string `json:"campaign"`
	Content  *string `json:"content"`
	Term     *string `json:"term"`
}

// ToMap keeps the raw UTM object for the touchpoint metadata column.
func (u *UTMPayload) ToMap() map[string]interface{} {
	if u == nil {
		return nil
	}

	m := make(map[string]interface{})
	if u.Source != nil {
		m["source"] = *u.Source
	}
	if u.Medium != nil {
		m["medium"] = *u.Medium
	}
	if u.Campaign != nil {
		m["campaign"] = *u.Campaign
	}
	if u.Content != nil {
		m["content"] = *u.Content
	}
	if u.Term != nil {
		m["term"] = *u.Term
	}

	if len(m) == 0 {
		return nil
	}
	return m
}
