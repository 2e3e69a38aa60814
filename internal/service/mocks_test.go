package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/repository"
)

// MockRentalRepo
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

// MockStatusRepo resolves the three-row catalog without a database.
type MockStatusRepo struct{}

var statusCatalog = map[domain.RentalStatusName]*domain.RentalStatus{
	domain.RentalStatusActive:    {ID: 1, Name: domain.RentalStatusActive},
	domain.RentalStatusCompleted: {ID: 2, Name: domain.RentalStatusCompleted},
	domain.RentalStatusCancelled: {ID: 3, Name: domain.RentalStatusCancelled},
}

func (m *MockStatusRepo) GetByName(_ context.Context, name domain.RentalStatusName) (*domain.RentalStatus, error) {
	return statusCatalog[name], nil
}
func (m *MockStatusRepo) GetByID(_ context.Context, id int64) (*domain.RentalStatus, error) {
	for _, st := range statusCatalog {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockSyncTaskRepo
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

// MockTransportGateway
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

// MockAccountGateway
type MockAccountGateway struct {
	mock.Mock
}

func (m *MockAccountGateway) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountGateway) ResolveCityID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

// capturePublisher records published messages in order so tests can assert
// topics, keys and causal ordering.
type capturePublisher struct {
	mu       sync.Mutex
	messages []capturedMessage
}

type capturedMessage struct {
	Topic string
	Key   string
	Value []byte
}

func (p *capturePublisher) Publish(topic, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, capturedMessage{Topic: topic, Key: key, Value: value})
	return nil
}

func (p *capturePublisher) Close() {}

func (p *capturePublisher) byTopic(topic string) []capturedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []capturedMessage
	for _, msg := range p.messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
