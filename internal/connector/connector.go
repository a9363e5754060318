// Package connector defines the boundary to the per-platform commerce and
// marketing integrations. The pixel pipeline never calls these directly;
// they live behind the same storage and are synced by separate workers.
package connector

import (
	"context"
	"time"
)

type Platform string

const (
	PlatformShopify     Platform = "shopify"
	PlatformWooCommerce Platform = "woocommerce"
	PlatformMagento     Platform = "magento"
	PlatformMetaAds     Platform = "meta_ads"
	PlatformGoogleAds   Platform = "google_ads"
	PlatformKlaviyo     Platform = "klaviyo"
)

// SyncCursor marks how far a connector has polled into a remote platform.
type SyncCursor struct {
	Platform  Platform
	UpdatedAt time.Time
	Token     string
}

// StoreConnector polls a merchant's store for orders/refunds and upserts
// them into the commerce tables.
type StoreConnector interface {
	Platform() Platform
	SyncOrders(ctx context.Context, since SyncCursor) (SyncCursor, error)
	SyncRefunds(ctx context.Context, since SyncCursor) (SyncCursor, error)
}

// MarketingConnector polls an ad/marketing platform for spend and campaign
// performance.
type MarketingConnector interface {
	Platform() Platform
	SyncSpend(ctx context.Context, since SyncCursor) (SyncCursor, error)
}
