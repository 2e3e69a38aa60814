package service

import (
	"context"
	"errors"
	"time"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/events"
	"swiftride-rental-service/internal/gateway"
	"swiftride-rental-service/internal/logger"
	"swiftride-rental-service/internal/repository"
	"swiftride-rental-service/internal/utils"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	statusRepo repository.StatusRepository
	syncRepo   repository.SyncTaskRepository
	transport  gateway.TransportGateway
	account    gateway.AccountGateway
	emitter    *events.Emitter
	pricing    utils.PricingStrategy
	now        func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	statusRepo repository.StatusRepository,
	syncRepo repository.SyncTaskRepository,
	transport gateway.TransportGateway,
	account gateway.AccountGateway,
	emitter *events.Emitter,
	pricing utils.PricingStrategy,
) RentalService {
	return &rentalService{
		rentalRepo: rentalRepo,
		statusRepo: statusRepo,
		syncRepo:   syncRepo,
		transport:  transport,
		account:    account,
		emitter:    emitter,
		pricing:    pricing,
		now:        time.Now,
	}
}

// NewRentalServiceWithClock is used by tests to pin the orchestrator clock.
func NewRentalServiceWithClock(
	rentalRepo repository.RentalRepository,
	statusRepo repository.StatusRepository,
	syncRepo repository.SyncTaskRepository,
	transport gateway.TransportGateway,
	account gateway.AccountGateway,
	emitter *events.Emitter,
	pricing utils.PricingStrategy,
	now func() time.Time,
) RentalService {
	svc := NewRentalService(rentalRepo, statusRepo, syncRepo, transport, account, emitter, pricing).(*rentalService)
	svc.now = now
	return svc
}

func (s *rentalService) Start(ctx context.Context, userID, transportID int64, startLat, startLng float64) (*domain.RentalProjection, error) {
	if userID <= 0 {
		return nil, domain.ValidationError("user id is required")
	}
	if transportID <= 0 {
		return nil, domain.ValidationError("transport id is required")
	}
	if !utils.ValidCoordinates(startLat, startLng) {
		return nil, domain.ValidationError("start coordinates out of range: lat=%v lng=%v", startLat, startLng)
	}

	// Vehicle availability cannot be confirmed while the transport
	// subsystem is down, so a dependency failure here is fatal.
	vehicle, err := s.transport.GetVehicle(ctx, transportID)
	if err != nil {
		return nil, err
	}
	availableID, err := s.transport.ResolveStatusID(ctx, domain.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}
	if vehicle.StatusID != availableID {
		return nil, domain.ErrVehicleUnavailable
	}

	activeStatus, err := s.statusRepo.GetByName(ctx, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		UserID:      userID,
		TransportID: transportID,
		StatusID:    activeStatus.ID,
		StartTime:   s.now(),
		StartLat:    startLat,
		StartLng:    startLng,
	}
	if err := s.rentalRepo.CreateActive(ctx, rental, activeStatus.ID); err != nil {
		return nil, err
	}

	// The rental row is the source of truth from here on. A failed vehicle
	// flip is a recoverable drift, not a failed start.
	s.pushVehicleStatus(ctx, rental, domain.VehicleStatusInUse)

	s.emitter.EmitNotification(events.NotificationEvent{
		RentalID:   rental.ID,
		UserID:     rental.UserID,
		Transition: domain.TransitionStart,
	})
	s.emitter.EmitAnalytics(events.AnalyticsEvent{
		RentalID:    rental.ID,
		UserID:      rental.UserID,
		TransportID: rental.TransportID,
		StartTime:   rental.StartTime.Unix(),
	})

	return s.project(ctx, rental, vehicle.Type), nil
}

func (s *rentalService) End(ctx context.Context, callerID, rentalID int64, endLat, endLng float64) (*domain.RentalProjection, error) {
	return s.applyTerminal(ctx, callerID, rentalID, domain.TransitionEnd, &endLat, &endLng)
}

func (s *rentalService) Cancel(ctx context.Context, callerID, rentalID int64) (*domain.RentalProjection, error) {
	return s.applyTerminal(ctx, callerID, rentalID, domain.TransitionCancel, nil, nil)
}

func (s *rentalService) ForceEnd(ctx context.Context, rentalID int64, endLat, endLng float64) (*domain.RentalProjection, error) {
	return s.applyTerminal(ctx, systemCaller, rentalID, domain.TransitionForceEnd, &endLat, &endLng)
}

// systemCaller marks transitions initiated by an operator or another
// subsystem; they are not scoped to a rental owner.
const systemCaller int64 = 0

// applyTerminal is the shared one-way transition out of ACTIVE. End, Cancel
// and ForceEnd differ only in the tag: whether end coordinates and derived
// fields are computed, and which events go out.
func (s *rentalService) applyTerminal(ctx context.Context, callerID, rentalID int64, kind domain.TransitionKind, endLat, endLng *float64) (*domain.RentalProjection, error) {
	if rentalID <= 0 {
		return nil, domain.ValidationError("rental id is required")
	}
	computeDerived := kind == domain.TransitionEnd || kind == domain.TransitionForceEnd
	if computeDerived {
		if endLat == nil || endLng == nil {
			return nil, domain.ValidationError("end coordinates are required")
		}
		if !utils.ValidCoordinates(*endLat, *endLng) {
			return nil, domain.ValidationError("end coordinates out of range: lat=%v lng=%v", *endLat, *endLng)
		}
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	// A rider may only terminate their own rental. Not found rather than
	// forbidden, so the id space is not probeable.
	if callerID != systemCaller && rental.UserID != callerID {
		return nil, domain.ErrNotFound
	}
	activeStatus, err := s.statusRepo.GetByName(ctx, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}
	if rental.StatusID != activeStatus.ID {
		return nil, domain.ErrRentalNotActive
	}

	terminalName := domain.RentalStatusCompleted
	if kind == domain.TransitionCancel {
		terminalName = domain.RentalStatusCancelled
	}
	terminalStatus, err := s.statusRepo.GetByName(ctx, terminalName)
	if err != nil {
		return nil, err
	}

	endTime := s.now()
	if endTime.Before(rental.StartTime) {
		endTime = rental.StartTime
	}
	rental.StatusID = terminalStatus.ID
	rental.EndTime = &endTime

	// All derived fields are computed before the status flip is persisted;
	// the repository writes everything in one statement.
	if computeDerived {
		duration := utils.TripMinutes(rental.StartTime, endTime)
		distance := utils.HaversineKm(rental.StartLat, rental.StartLng, *endLat, *endLng)
		cost := s.pricing.Cost(duration, distance)

		rental.EndLat = endLat
		rental.EndLng = endLng
		rental.DurationMinutes = &duration
		rental.DistanceKm = &distance
		rental.TotalCostCents = &cost
	}

	if err := s.rentalRepo.ApplyTerminal(ctx, rental, activeStatus.ID); err != nil {
		return nil, err
	}

	s.pushVehicleStatus(ctx, rental, domain.VehicleStatusAvailable)

	transportType := s.emitTerminalEvents(ctx, rental, kind)

	return s.project(ctx, rental, transportType), nil
}

func (s *rentalService) GetActive(ctx context.Context, userID int64) (*domain.RentalProjection, error) {
	if userID <= 0 {
		return nil, domain.ValidationError("user id is required")
	}
	activeStatus, err := s.statusRepo.GetByName(ctx, domain.RentalStatusActive)
	if err != nil {
		return nil, err
	}
	rental, err := s.rentalRepo.FindActiveByUser(ctx, userID, activeStatus.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.project(ctx, rental, ""), nil
}

func (s *rentalService) History(ctx context.Context, userID int64, page, size int32) (*domain.RentalPage, error) {
	if userID <= 0 {
		return nil, domain.ValidationError("user id is required")
	}
	if page < 0 {
		return nil, domain.ValidationError("page must not be negative")
	}
	if size <= 0 || size > 100 {
		return nil, domain.ValidationError("size must be between 1 and 100")
	}

	items, total, err := s.rentalRepo.ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}
	result := domain.NewRentalPage(items, page, size, total)
	return &result, nil
}

func (s *rentalService) ListAll(ctx context.Context, page, size int32) (*domain.RentalPage, error) {
	if page < 0 {
		return nil, domain.ValidationError("page must not be negative")
	}
	if size <= 0 || size > 100 {
		return nil, domain.ValidationError("size must be between 1 and 100")
	}

	items, total, err := s.rentalRepo.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	result := domain.NewRentalPage(items, page, size, total)
	return &result, nil
}

// pushVehicleStatus flips the vehicle's availability after the rental row is
// already persisted. Failure is logged as a consistency risk and queued for
// the reconciliation job; it never fails the operation.
func (s *rentalService) pushVehicleStatus(ctx context.Context, rental *domain.Rental, status string) {
	if err := s.transport.SetStatus(ctx, rental.TransportID, status); err != nil {
		logger.Error("Vehicle status push failed, queueing for reconciliation",
			"rental_id", rental.ID,
			"transport_id", rental.TransportID,
			"status", status,
			"error", err)
		task := &repository.SyncTask{
			TransportID: rental.TransportID,
			RentalID:    rental.ID,
			Status:      status,
		}
		if qErr := s.syncRepo.Enqueue(ctx, task); qErr != nil {
			logger.Error("Failed to queue vehicle sync task", "rental_id", rental.ID, "error", qErr)
		}
	}
}

// emitTerminalEvents publishes the notification, report and analytics events
// of a terminal transition and returns the vehicle type used to enrich the
// response. Lookups that only enrich the events tolerate failure.
func (s *rentalService) emitTerminalEvents(ctx context.Context, rental *domain.Rental, kind domain.TransitionKind) string {
	s.emitter.EmitNotification(events.NotificationEvent{
		RentalID:   rental.ID,
		UserID:     rental.UserID,
		Transition: kind,
	})

	transportType := ""
	if vehicle, err := s.transport.GetVehicle(ctx, rental.TransportID); err == nil {
		transportType = vehicle.Type
	} else {
		logger.Warn("Vehicle lookup failed while enriching terminal events", "rental_id", rental.ID, "error", err)
	}

	if kind == domain.TransitionEnd || kind == domain.TransitionForceEnd {
		userName, userEmail := "unknown", ""
		if account, err := s.account.GetAccount(ctx, rental.UserID); err == nil {
			userName, userEmail = account.Name, account.Email
		} else {
			logger.Warn("Account lookup failed while building report event", "rental_id", rental.ID, "error", err)
		}

		reportStatus := string(domain.RentalStatusCompleted)
		if kind == domain.TransitionForceEnd {
			reportStatus = string(domain.TransitionForceEnd)
		}
		s.emitter.EmitReport(events.ReportEvent{
			RentalID:       rental.ID,
			UserID:         rental.UserID,
			UserName:       userName,
			UserEmail:      userEmail,
			TransportID:    rental.TransportID,
			TransportType:  transportType,
			StartEpoch:     rental.StartTime.Unix(),
			EndEpoch:       rental.EndTime.Unix(),
			DurationMin:    derefInt64(rental.DurationMinutes),
			Status:         reportStatus,
			TotalCostCents: derefInt64(rental.TotalCostCents),
		})
	}

	endEpoch := rental.EndTime.Unix()
	s.emitter.EmitAnalytics(events.AnalyticsEvent{
		RentalID:        rental.ID,
		UserID:          rental.UserID,
		TransportID:     rental.TransportID,
		StartTime:       rental.StartTime.Unix(),
		EndTime:         &endEpoch,
		TotalCostCents:  rental.TotalCostCents,
		DurationMinutes: rental.DurationMinutes,
		DistanceKm:      rental.DistanceKm,
	})

	return transportType
}

func (s *rentalService) project(ctx context.Context, rental *domain.Rental, transportType string) *domain.RentalProjection {
	statusName := domain.RentalStatusActive
	if st, err := s.statusRepo.GetByID(ctx, rental.StatusID); err == nil {
		statusName = st.Name
	}
	return &domain.RentalProjection{
		ID:              rental.ID,
		UserID:          rental.UserID,
		TransportID:     rental.TransportID,
		TransportType:   transportType,
		Status:          statusName,
		StartTime:       rental.StartTime,
		EndTime:         rental.EndTime,
		TotalCostCents:  rental.TotalCostCents,
		DurationMinutes: rental.DurationMinutes,
		DistanceKm:      rental.DistanceKm,
	}
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
