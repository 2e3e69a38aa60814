package gateway

import (
	"context"

	"swiftride-rental-service/internal/domain"
)

// UnknownCityID is the deterministic fallback returned by ResolveCityID when
// the account subsystem cannot be reached. City resolution is enrichment
// only, so a sentinel is safe where a vehicle lookup is not.
const UnknownCityID int64 = 0

// TransportGateway is the core's sole access point to the transport
// subsystem.
type TransportGateway interface {
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	ResolveStatusID(ctx context.Context, name string) (int64, error)
	SetStatus(ctx context.Context, vehicleID int64, status string) error
	SetCoordinates(ctx context.Context, vehicleID int64, lat, lng float64) error
}

// AccountGateway is the core's sole access point to the user subsystem.
type AccountGateway interface {
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ResolveCityID(ctx context.Context, name string) (int64, error)
}
