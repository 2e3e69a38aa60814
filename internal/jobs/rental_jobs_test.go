package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"swiftride-rental-service/internal/config"
	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/repository"
)

type MockSyncTaskRepo struct {
	mock.Mock
}

func (m *MockSyncTaskRepo) Enqueue(ctx context.Context, task *repository.SyncTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}
func (m *MockSyncTaskRepo) ListPending(ctx context.Context, limit int32) ([]repository.SyncTask, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.SyncTask), args.Error(1)
}
func (m *MockSyncTaskRepo) MarkAttempt(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSyncTaskRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateActive(ctx context.Context, rental *domain.Rental, activeStatusID int64) error {
	args := m.Called(ctx, rental, activeStatusID)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) FindActiveByUser(ctx context.Context, userID int64, activeStatusID int64) (*domain.Rental, error) {
	args := m.Called(ctx, userID, activeStatusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ApplyTerminal(ctx context.Context, rental *domain.Rental, activeStatusID int64) error {
	args := m.Called(ctx, rental, activeStatusID)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Rental, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int64), args.Error(2)
}
func (m *MockRentalRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Rental, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int64), args.Error(2)
}
func (m *MockRentalRepo) ListActiveSince(ctx context.Context, activeStatusID int64, cutoff time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, activeStatusID, cutoff)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

type MockStatusRepo struct {
	mock.Mock
}

func (m *MockStatusRepo) GetByName(ctx context.Context, name domain.RentalStatusName) (*domain.RentalStatus, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalStatus), args.Error(1)
}
func (m *MockStatusRepo) GetByID(ctx context.Context, id int64) (*domain.RentalStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalStatus), args.Error(1)
}

type MockTransportGateway struct {
	mock.Mock
}

func (m *MockTransportGateway) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockTransportGateway) ResolveStatusID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockTransportGateway) SetStatus(ctx context.Context, vehicleID int64, status string) error {
	args := m.Called(ctx, vehicleID, status)
	return args.Error(0)
}
func (m *MockTransportGateway) SetCoordinates(ctx context.Context, vehicleID int64, lat, lng float64) error {
	args := m.Called(ctx, vehicleID, lat, lng)
	return args.Error(0)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) SendOpsAlert(ctx context.Context, subject, message string) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

func jobTestConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			StaleRentalHours:     24,
			MaxReconcileAttempts: 3,
		},
	}
}

func TestJobRunner_ReconcileVehicleStatus(t *testing.T) {
	t.Run("Repairs Pending Task", func(t *testing.T) {
		syncRepo := new(MockSyncTaskRepo)
		transport := new(MockTransportGateway)
		alerts := new(MockAlertService)
		jr := NewJobRunner(syncRepo, new(MockRentalRepo), new(MockStatusRepo), transport, alerts, jobTestConfig())

		tasks := []repository.SyncTask{
			{ID: 1, TransportID: 7, RentalID: 42, Status: domain.VehicleStatusAvailable, Attempts: 0},
		}
		syncRepo.On("ListPending", mock.Anything, int32(100)).Return(tasks, nil)
		transport.On("SetStatus", mock.Anything, int64(7), domain.VehicleStatusAvailable).Return(nil)
		syncRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

		jr.ReconcileVehicleStatus()

		syncRepo.AssertCalled(t, "Delete", mock.Anything, int64(1))
		syncRepo.AssertNotCalled(t, "MarkAttempt", mock.Anything, mock.Anything)
		alerts.AssertNotCalled(t, "SendOpsAlert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Records Failed Attempt", func(t *testing.T) {
		syncRepo := new(MockSyncTaskRepo)
		transport := new(MockTransportGateway)
		alerts := new(MockAlertService)
		jr := NewJobRunner(syncRepo, new(MockRentalRepo), new(MockStatusRepo), transport, alerts, jobTestConfig())

		tasks := []repository.SyncTask{
			{ID: 1, TransportID: 7, RentalID: 42, Status: domain.VehicleStatusAvailable, Attempts: 0},
		}
		syncRepo.On("ListPending", mock.Anything, int32(100)).Return(tasks, nil)
		transport.On("SetStatus", mock.Anything, int64(7), domain.VehicleStatusAvailable).Return(errors.New("still down"))
		syncRepo.On("MarkAttempt", mock.Anything, int64(1)).Return(nil)

		jr.ReconcileVehicleStatus()

		syncRepo.AssertCalled(t, "MarkAttempt", mock.Anything, int64(1))
		syncRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		alerts.AssertNotCalled(t, "SendOpsAlert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Escalates When Attempts Exhausted", func(t *testing.T) {
		syncRepo := new(MockSyncTaskRepo)
		transport := new(MockTransportGateway)
		alerts := new(MockAlertService)
		jr := NewJobRunner(syncRepo, new(MockRentalRepo), new(MockStatusRepo), transport, alerts, jobTestConfig())

		tasks := []repository.SyncTask{
			{ID: 1, TransportID: 7, RentalID: 42, Status: domain.VehicleStatusAvailable, Attempts: 2},
		}
		syncRepo.On("ListPending", mock.Anything, int32(100)).Return(tasks, nil)
		transport.On("SetStatus", mock.Anything, int64(7), domain.VehicleStatusAvailable).Return(errors.New("still down"))
		syncRepo.On("MarkAttempt", mock.Anything, int64(1)).Return(nil)
		alerts.On("SendOpsAlert", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
		syncRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

		jr.ReconcileVehicleStatus()

		alerts.AssertNumberOfCalls(t, "SendOpsAlert", 1)
		syncRepo.AssertCalled(t, "Delete", mock.Anything, int64(1))
	})

	t.Run("Nothing Pending", func(t *testing.T) {
		syncRepo := new(MockSyncTaskRepo)
		transport := new(MockTransportGateway)
		jr := NewJobRunner(syncRepo, new(MockRentalRepo), new(MockStatusRepo), transport, new(MockAlertService), jobTestConfig())

		syncRepo.On("ListPending", mock.Anything, int32(100)).Return([]repository.SyncTask{}, nil)

		jr.ReconcileVehicleStatus()

		transport.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestJobRunner_SweepStaleActiveRentals(t *testing.T) {
	t.Run("Reports Without Terminating", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		statusRepo := new(MockStatusRepo)
		jr := NewJobRunner(new(MockSyncTaskRepo), rentalRepo, statusRepo, new(MockTransportGateway), new(MockAlertService), jobTestConfig())

		statusRepo.On("GetByName", mock.Anything, domain.RentalStatusActive).
			Return(&domain.RentalStatus{ID: 1, Name: domain.RentalStatusActive}, nil)
		stale := []domain.Rental{
			{ID: 42, UserID: 5, TransportID: 7, StatusID: 1, StartTime: time.Now().Add(-48 * time.Hour)},
		}
		rentalRepo.On("ListActiveSince", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).Return(stale, nil)

		jr.SweepStaleActiveRentals()

		rentalRepo.AssertNotCalled(t, "ApplyTerminal", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Survives Repository Failure", func(t *testing.T) {
		rentalRepo := new(MockRentalRepo)
		statusRepo := new(MockStatusRepo)
		jr := NewJobRunner(new(MockSyncTaskRepo), rentalRepo, statusRepo, new(MockTransportGateway), new(MockAlertService), jobTestConfig())

		statusRepo.On("GetByName", mock.Anything, domain.RentalStatusActive).
			Return(nil, errors.New("db down"))

		assert.NotPanics(t, func() { jr.SweepStaleActiveRentals() })
		rentalRepo.AssertNotCalled(t, "ListActiveSince", mock.Anything, mock.Anything, mock.Anything)
	})
}
