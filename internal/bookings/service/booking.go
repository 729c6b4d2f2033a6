package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "tourbook/internal/bookings/errors"
	"tourbook/internal/bookings/events"
	"tourbook/internal/bookings/lifecycle"
	"tourbook/internal/bookings/repository"
	"tourbook/internal/bookings/validator"
	"tourbook/pkg/config"
	apperrors "tourbook/pkg/errors"
	"tourbook/pkg/model"
	"tourbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByDate(ctx context.Context, date time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string, reason string) (*model.Booking, error)
	Timeline(ctx context.Context, bookingID string) ([]*model.TimelineEvent, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	customers repository.CustomerRepository
	locks     repository.DateLockRepository
	counters  repository.CounterRepository
	timeline  repository.TimelineRepository
	validator *validator.BookingValidator
	events    events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	customers repository.CustomerRepository,
	locks repository.DateLockRepository,
	counters repository.CounterRepository,
	timeline repository.TimelineRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		customers: customers,
		locks:     locks,
		counters:  counters,
		timeline:  timeline,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create runs the capacity-safe booking creation sequence: validate, acquire
// the per-date advisory lock, then inside one transaction re-check aggregate
// capacity, resolve the customer, assign the next booking number, and insert
// the booking as pending. The lock serializes the read-check-write sequence
// per date so concurrent requests can never overbook; unrelated dates stay
// fully concurrent.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	lockID, err := s.acquireDateLock(ctx, req.TourDate)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release date lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booked, err := s.repo.SumPartySizeForDate(sessCtx, req.TourDate)
		if err != nil {
			return apperrors.Internal("Failed to check daily capacity", err)
		}
		if booked+req.PartySize > s.cfg.DailyCapacity {
			return apperrors.Conflict(fmt.Sprintf(
				"Daily capacity exceeded for %s: %d of %d spots taken, %d requested",
				model.DateKey(req.TourDate), booked, s.cfg.DailyCapacity, req.PartySize,
			)).WithDetails(map[string]any{
				"tour_date":      model.DateKey(req.TourDate),
				"booked":         booked,
				"daily_capacity": s.cfg.DailyCapacity,
				"requested":      req.PartySize,
			})
		}

		customer, err := s.customers.UpsertByEmail(sessCtx, &model.Customer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		})
		if err != nil {
			return apperrors.Internal("Failed to resolve customer", err)
		}

		number, err := s.nextBookingNumber(sessCtx)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			BookingNumber: number,
			CustomerID:    customer.ID,
			TourDate:      req.TourDate.UTC(),
			PartySize:     req.PartySize,
			DurationHours: req.DurationHours,
			Status:        model.StatusPending,
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "tour_date", model.DateKey(req.TourDate), "error", err)
		return nil, err
	}

	s.recordTimeline(ctx, booking.ID, model.TimelineBookingCreated,
		fmt.Sprintf("booking %s created for %d guests", booking.BookingNumber, booking.PartySize))
	s.publishEvent(ctx, model.TimelineBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_number", booking.BookingNumber,
		"tour_date", model.DateKey(booking.TourDate),
		"party_size", booking.PartySize,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByDate(ctx context.Context, date time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByDate(ctx, date)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by date", "date", model.DateKey(date), "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByDate(ctx, date, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by date", "date", model.DateKey(date), "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.StatusConfirmed, model.TimelineBookingConfirmed, "")
}

func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.StatusCompleted, model.TimelineBookingCompleted, "")
}

// Cancel rejects terminal bookings with a specific reason and enforces the
// cancellation deadline before transitioning.
func (s *bookingService) Cancel(ctx context.Context, id string, reason string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.StatusCancelled:
		return nil, apperrors.Conflict(fmt.Sprintf("Booking %s is already cancelled", booking.BookingNumber))
	case model.StatusCompleted:
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot cancel completed booking %s", booking.BookingNumber))
	}

	if err := lifecycle.ValidateTransition(booking.Status, model.StatusCancelled); err != nil {
		return nil, err
	}

	notice := time.Until(booking.TourDate)
	if notice < s.cfg.CancellationNotice {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Booking %s cannot be cancelled less than %s before the tour",
			booking.BookingNumber, s.cfg.CancellationNotice,
		)).WithDetails(map[string]any{
			"tour_date":       model.DateKey(booking.TourDate),
			"required_notice": s.cfg.CancellationNotice.String(),
		})
	}

	now := s.now().UTC()
	booking.Status = model.StatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &now

	if err := s.repo.UpdateStatus(ctx, id, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.recordTimeline(ctx, booking.ID, model.TimelineBookingCancelled, reason)
	s.publishEvent(ctx, model.TimelineBookingCancelled, booking)

	s.cfg.Log.Info("Booking cancelled",
		"id", booking.ID,
		"booking_number", booking.BookingNumber,
		"reason", reason,
	)
	return booking, nil
}

func (s *bookingService) Timeline(ctx context.Context, bookingID string) ([]*model.TimelineEvent, error) {
	if _, err := s.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}

	timeline, err := s.timeline.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking timeline", err)
	}
	return timeline, nil
}

// --- Helpers ---

func (s *bookingService) transition(ctx context.Context, id string, to model.BookingStatus, eventType string, note string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.ValidateTransition(booking.Status, to); err != nil {
		return nil, err
	}

	booking.Status = to
	if err := s.repo.UpdateStatus(ctx, id, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.recordTimeline(ctx, booking.ID, eventType, note)
	s.publishEvent(ctx, eventType, booking)

	s.cfg.Log.Info("Booking status updated",
		"id", booking.ID,
		"booking_number", booking.BookingNumber,
		"status", to,
	)
	return booking, nil
}

func (s *bookingService) sanitizeRequest(req *model.BookingRequest) {
	req.CustomerName = sanitizer.NormalizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.NormalizeEmail(req.CustomerEmail)
	if req.CustomerPhone != "" {
		if normalized := sanitizer.NormalizePhone(req.CustomerPhone); normalized != "" {
			req.CustomerPhone = normalized
		}
	}
}

// acquireDateLock emulates a blocking advisory lock over the sentinel
// document: retry the insert until it succeeds or the wait budget runs out.
func (s *bookingService) acquireDateLock(ctx context.Context, date time.Time) (string, error) {
	lockID := "tour_date_lock_" + model.DateKey(date)
	deadline := s.now().Add(s.cfg.LockWaitTimeout)

	for {
		lock := &model.DateLock{
			ID:        lockID,
			ExpiresAt: s.now().Add(s.cfg.LockTTL),
		}
		err := s.locks.Acquire(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire date lock", err)
		}
		if s.now().After(deadline) {
			return "", apperrors.Conflict("This tour date is currently being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Timeout("Timed out waiting for tour date lock")
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

func (s *bookingService) nextBookingNumber(ctx context.Context) (string, error) {
	period := s.now().UTC().Format("200601")
	seq, err := s.counters.Next(ctx, "bookings_"+period)
	if err != nil {
		return "", apperrors.Internal("Failed to generate booking number", err)
	}
	return fmt.Sprintf("%s-%s-%04d", s.cfg.BookingNumPrefix, period, seq), nil
}

// recordTimeline and publishEvent are best-effort: bookings that committed
// stay committed even when the audit trail or event bus hiccups.
func (s *bookingService) recordTimeline(ctx context.Context, bookingID, eventType, note string) {
	event := &model.TimelineEvent{
		BookingID: bookingID,
		Type:      eventType,
		Note:      note,
	}
	if err := s.timeline.Append(context.WithoutCancel(ctx), event); err != nil {
		s.cfg.Log.Warn("Failed to record timeline event", "booking_id", bookingID, "type", eventType, "error", err)
	}
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingEvent(context.WithoutCancel(ctx), eventType, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "booking_id", booking.ID, "type", eventType, "error", err)
	}
}
