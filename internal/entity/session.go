package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type Session struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	VisitorID        uuid.UUID  `json:"visitorId" db:"visitor_id"`
	StartedAt        time.Time  `json:"startedAt" db:"started_at"`
	EndedAt          *time.Time `json:"endedAt" db:"ended_at"`
	LastEventAt      time.Time  `json:"lastEventAt" db:"last_event_at"`
	PageViewCount    int        `json:"pageViewCount" db:"page_view_count"`
	EventCount       int        `json:"eventCount" db:"event_count"`
	DurationSeconds  int64      `json:"durationSeconds" db:"duration_seconds"`
	DeviceType       *string    `json:"deviceType" db:"device_type"`
	DeviceVendor     *string    `json:"deviceVendor" db:"device_vendor"`
	Browser          *string    `json:"browser" db:"browser"`
	OS               *string    `json:"os" db:"os"`
	Language         *string    `json:"language" db:"language"`
	ScreenResolution *string    `json:"screenResolution" db:"screen_resolution"`
	Timezone         *string    `json:"timezone" db:"timezone"`
	UserAgent        *string    `json:"userAgent" db:"user_agent"`
	IPAddress        *string    `json:"ipAddress" db:"ip_address"`
	LandingPage      *string    `json:"landingPage" db:"landing_page"`
	Referrer         *string    `json:"referrer" db:"referrer"`
	UTMSource        *string    `json:"utmSource" db:"utm_source"`
	UTMMedium        *string    `json:"utmMedium" db:"utm_medium"`
	UTMCampaign      *string    `json:"utmCampaign" db:"utm_campaign"`
	UTMContent       *string    `json:"utmContent" db:"utm_content"`
	UTMTerm          *string    `json:"utmTerm" db:"utm_term"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

type SessionPayload struct {
	ID *string `json:"id"`
}

type DevicePayload struct {
	Type         *string `json:"type"`
	Vendor       *string `json:"vendor"`
	Browser      *string `json:"browser"`
	OS           *string `json:"os"`
	Language     *string `json:"language"`
	Timezone     *string `json:"timezone"`
	UserAgent    *string `json:"userAgent"`
	ScreenWidth  *int    `json:"screenWidth"`
	ScreenHeight *int    `json:"screenHeight"`
}

type PagePayload struct {
	URL        *string `json:"url"`
	Referrer   *string `json:"referrer"`
	Title      *string `json:"title"`
	SearchTerm *string `json:"searchTerm"`
}
