package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrNotConfigured is returned by every catalog query when no store is wired.
	ErrNotConfigured = errors.New("catalog store not configured")
)

type CenterRepository interface {
	// Write paths
	UpsertCenter(ctx context.Context, c Center) error
	LogMiss(ctx context.Context, placeID string, status int, reason string) error

	// Read paths
	GetCenter(ctx context.Context, placeID string) (Center, error)
	// ListCenters returns centers ordered by rating descending, unrated last,
	// ties in storage order.
	ListCenters(ctx context.Context, q CentersQuery) ([]Center, error)
	// ListAddresses returns place id and formatted address of every center.
	ListAddresses(ctx context.Context) ([]AddressRef, error)
}

type PlacesClient interface {
	GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// CentersQuery filters ListCenters. Zero values disable a filter.
type CentersQuery struct {
	// AddressContains matches formatted_address case-insensitively.
	AddressContains string
	// Text matches name or formatted_address case-insensitively.
	Text string
	// MinRating, when set, keeps rated centers with rating >= *MinRating.
	MinRating *float64
	Limit     int
}

type AddressRef struct {
	PlaceID          string
	FormattedAddress string
}
