// entity/metrics.go
package entity

import "time"

type MetricsSummary struct {
	TotalEvents            int64   `json:"total_events"`
	UniqueVisitors         int64   `json:"unique_visitors"`
	Sessions               int64   `json:"sessions"`
	Conversions            int64   `json:"conversions"`
	TotalRevenue           float64 `json:"total_revenue"`
	ConversionRate         float64 `json:"conversion_rate"`
	RevenuePerVisitor      float64 `json:"revenue_per_visitor"`
	TotalPageViews         int64   `json:"total_page_views"`
	AvgSessionDuration     float64 `json:"avg_session_duration"`
	AvgPageViewsPerSession float64 `json:"avg_page_views_per_session"`
}

type MetricsRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type MetricsResponse struct {
	Range        MetricsRange   `json:"range"`
	Metrics      MetricsSummary `json:"metrics"`
	RecentEvents []Event        `json:"recent_events"`
}

// JourneySession сессия с вложенными в неё событиями
type JourneySession struct {
	Session
	Events []Event `json:"events"`
}

type Journey struct {
	Visitor     Visitor          `json:"visitor"`
	Sessions    []JourneySession `json:"sessions"`
	Touchpoints []Touchpoint     `json:"touchpoints"`
}
