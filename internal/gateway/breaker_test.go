package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftride-rental-service/internal/domain"
)

type stubTransport struct {
	getVehicleCalls int
	getVehicleErr   error
	vehicle         *domain.Vehicle

	setStatusCalls int
	setStatusErrs  []error
}

func (s *stubTransport) GetVehicle(context.Context, int64) (*domain.Vehicle, error) {
	s.getVehicleCalls++
	if s.getVehicleErr != nil {
		return nil, s.getVehicleErr
	}
	return s.vehicle, nil
}

func (s *stubTransport) ResolveStatusID(context.Context, string) (int64, error) {
	return 1, nil
}

func (s *stubTransport) SetStatus(context.Context, int64, string) error {
	s.setStatusCalls++
	if len(s.setStatusErrs) == 0 {
		return nil
	}
	err := s.setStatusErrs[0]
	s.setStatusErrs = s.setStatusErrs[1:]
	return err
}

func (s *stubTransport) SetCoordinates(context.Context, int64, float64, float64) error {
	return nil
}

type stubAccount struct {
	getAccountCalls int
	getAccountErr   error
	account         *domain.Account

	resolveCityCalls int
	cityID           int64
}

func (s *stubAccount) GetAccount(context.Context, int64) (*domain.Account, error) {
	s.getAccountCalls++
	if s.getAccountErr != nil {
		return nil, s.getAccountErr
	}
	return s.account, nil
}

func (s *stubAccount) ResolveCityID(context.Context, string) (int64, error) {
	s.resolveCityCalls++
	return s.cityID, nil
}

func testBreakerSettings(failures uint32) BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: failures,
		OpenTimeout:         time.Minute,
		HalfOpenMaxCalls:    1,
	}
}

func TestBreakerTransport_OpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	stub := &stubTransport{getVehicleErr: errors.New("connection refused")}
	gw := NewBreakerTransportGateway(stub, testBreakerSettings(3))

	for i := 0; i < 3; i++ {
		_, err := gw.GetVehicle(ctx, 7)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrDependencyUnavailable)
	}
	assert.Equal(t, 3, stub.getVehicleCalls)

	// Circuit is open now: the call fails fast without reaching downstream.
	_, err := gw.GetVehicle(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	assert.Equal(t, 3, stub.getVehicleCalls)
}

func TestBreakerTransport_BusinessErrorsDoNotTrip(t *testing.T) {
	ctx := context.Background()
	stub := &stubTransport{getVehicleErr: domain.ErrNotFound}
	gw := NewBreakerTransportGateway(stub, testBreakerSettings(2))

	for i := 0; i < 5; i++ {
		_, err := gw.GetVehicle(ctx, 7)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrDependencyUnavailable)
	}
	assert.Equal(t, 5, stub.getVehicleCalls)
}

func TestBreakerTransport_TimeoutIsDependencyFailure(t *testing.T) {
	ctx := context.Background()
	stub := &stubTransport{getVehicleErr: context.DeadlineExceeded}
	gw := NewBreakerTransportGateway(stub, testBreakerSettings(5))

	_, err := gw.GetVehicle(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	assert.Equal(t, 1, stub.getVehicleCalls)
}

func TestBreakerTransport_SetStatusRetriesOnce(t *testing.T) {
	ctx := context.Background()
	stub := &stubTransport{setStatusErrs: []error{errors.New("connection reset")}}
	gw := NewBreakerTransportGateway(stub, testBreakerSettings(5))

	err := gw.SetStatus(ctx, 7, domain.VehicleStatusAvailable)
	assert.NoError(t, err)
	assert.Equal(t, 2, stub.setStatusCalls)
}

func TestBreakerTransport_SetStatusSkipsRetryWhenOpen(t *testing.T) {
	ctx := context.Background()
	stub := &stubTransport{getVehicleErr: errors.New("connection refused")}
	gw := NewBreakerTransportGateway(stub, testBreakerSettings(1))

	_, err := gw.GetVehicle(ctx, 7)
	require.Error(t, err)

	err = gw.SetStatus(ctx, 7, domain.VehicleStatusAvailable)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	assert.Equal(t, 0, stub.setStatusCalls)
}

func TestBreakerAccount_ResolveCityDegradesToSentinel(t *testing.T) {
	ctx := context.Background()
	stub := &stubAccount{getAccountErr: errors.New("connection refused"), cityID: 12}
	gw := NewBreakerAccountGateway(stub, testBreakerSettings(1))

	_, err := gw.GetAccount(ctx, 5)
	require.Error(t, err)

	// Once the circuit is open the two operations diverge: profile lookups
	// surface the outage, city resolution silently degrades.
	_, err = gw.GetAccount(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)

	cityID, err := gw.ResolveCityID(ctx, "tbilisi")
	assert.NoError(t, err)
	assert.Equal(t, UnknownCityID, cityID)
	assert.Equal(t, 0, stub.resolveCityCalls)
}

func TestBreakerAccount_ResolveCityPassesThroughWhenHealthy(t *testing.T) {
	ctx := context.Background()
	stub := &stubAccount{cityID: 12}
	gw := NewBreakerAccountGateway(stub, testBreakerSettings(3))

	cityID, err := gw.ResolveCityID(ctx, "tbilisi")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), cityID)
	assert.Equal(t, 1, stub.resolveCityCalls)
}
