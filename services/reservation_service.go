package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/validation"
	"gorm.io/gorm"
)

var reservationTransitions = map[string][]string{
	models.ReservationStatusPending:   {models.ReservationStatusConfirmed, models.ReservationStatusCancelled},
	models.ReservationStatusConfirmed: {models.ReservationStatusCompleted, models.ReservationStatusCancelled},
}

// ReservationService manages table bookings. Dates are judged against the
// restaurant's local calendar.
type ReservationService struct {
	db     *gorm.DB
	events EventPublisher
	loc    *time.Location
	now    func() time.Time
	log    *logger.Logger
}

// NewReservationService creates a reservation service
func NewReservationService(db *gorm.DB, events EventPublisher) *ReservationService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &ReservationService{
		db:     db,
		events: events,
		loc:    config.GetConfig().Location(),
		now:    time.Now,
		log:    logger.Default().With("component", "reservations"),
	}
}

// Today returns the current time in the restaurant's time zone
func (s *ReservationService) Today() time.Time {
	return s.now().In(s.loc)
}

// Create books a table. New reservations always start as pending; the
// email defaults to the user's.
func (s *ReservationService) Create(ctx context.Context, user *models.User, in validation.ReservationInput) (*models.Reservation, error) {
	if in.Email == "" {
		in.Email = user.Email
	}
	if err := validation.ValidateReservation(&in, s.Today()); err != nil {
		return nil, err
	}

	reservation := models.Reservation{
		UserID:          user.ID,
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Date:            in.Date,
		Time:            in.Time,
		NumberOfGuests:  in.NumberOfGuests,
		SpecialRequests: in.SpecialRequests,
		Status:          models.ReservationStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&reservation).Error; err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.log.Info("reservation_created", "Reservation created", "reservation_id", reservation.ID, "date", reservation.Date, "time", reservation.Time)
	return &reservation, nil
}

// Update replaces the booking details. Cancelled and completed
// reservations can no longer be edited.
func (s *ReservationService) Update(ctx context.Context, user *models.User, id uint, in validation.ReservationInput) (*models.Reservation, error) {
	reservation, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !reservation.IsEditable() {
		return nil, ErrReservationLocked
	}

	if in.Email == "" {
		in.Email = reservation.Email
	}
	if err := validation.ValidateReservation(&in, s.Today()); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(reservation).Updates(map[string]interface{}{
		"name":             in.Name,
		"email":            in.Email,
		"phone":            in.Phone,
		"date":             in.Date,
		"time":             in.Time,
		"number_of_guests": in.NumberOfGuests,
		"special_requests": in.SpecialRequests,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	return s.findOwned(ctx, user, id)
}

// Cancel marks the reservation cancelled and keeps the row. Cancelling a
// cancelled reservation is a no-op.
func (s *ReservationService) Cancel(ctx context.Context, user *models.User, id uint) (*models.Reservation, error) {
	reservation, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationStatusCancelled:
		return reservation, nil
	case models.ReservationStatusCompleted:
		return nil, ErrReservationLocked
	}

	return s.transition(ctx, reservation, models.ReservationStatusCancelled)
}

// List returns the user's reservations newest first; staff see all of them
func (s *ReservationService) List(ctx context.Context, user *models.User, page Page) ([]models.Reservation, Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.Reservation{})
	if !user.IsStaff() {
		query = query.Where("user_id = ?", user.ID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count reservations: %w", err)
	}

	var reservations []models.Reservation
	if err := page.Paginate(query).Order("created_at DESC, id DESC").Find(&reservations).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list reservations: %w", err)
	}

	return reservations, page.Result(total), nil
}

// Get returns one reservation owned by the user (any, for staff)
func (s *ReservationService) Get(ctx context.Context, user *models.User, id uint) (*models.Reservation, error) {
	return s.findOwned(ctx, user, id)
}

// SetStatus applies a staff transition
func (s *ReservationService) SetStatus(ctx context.Context, id uint, status string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.db.WithContext(ctx).First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	if !allowed(reservationTransitions, reservation.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, reservation.Status, status)
	}
	return s.transition(ctx, &reservation, status)
}

func (s *ReservationService) transition(ctx context.Context, reservation *models.Reservation, status string) (*models.Reservation, error) {
	from := reservation.Status
	res := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservation.ID, from).
		Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: reservation changed concurrently", ErrInvalidTransition)
	}
	reservation.Status = status

	s.log.Info("reservation_status_changed", "Reservation status updated", "reservation_id", reservation.ID, "from", from, "to", status)
	publishEvent(ctx, s.events, Event{
		Type:          EventReservationStatusChanged,
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		Status:        status,
	})
	return reservation, nil
}

func (s *ReservationService) findOwned(ctx context.Context, user *models.User, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	query := s.db.WithContext(ctx).Where("id = ?", id)
	if !user.IsStaff() {
		query = query.Where("user_id = ?", user.ID)
	}

	err := query.First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &reservation, nil
}
