package controllers

import (
	"net/http"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-gonic/gin"
)

// ReservationRequest is the body for creating or updating a reservation.
// Field rules (opening hours, booking window, phone format) are checked by
// the reservation service so every problem is reported at once.
type ReservationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	NumberOfGuests  int    `json:"number_of_guests"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

func (r ReservationRequest) input() validation.ReservationInput {
	return validation.ReservationInput{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Date:            r.Date,
		Time:            r.Time,
		NumberOfGuests:  r.NumberOfGuests,
		SpecialRequests: r.SpecialRequests,
	}
}

// UpdateReservationStatusRequest is the body of PATCH /api/v1/reservations/:id/status
type UpdateReservationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
}

func reservationService() *services.ReservationService {
	return services.NewReservationService(config.GetDB(), services.GetEventPublisher())
}

// ListReservations handles GET /api/v1/reservations
func ListReservations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reservations, pagination, err := reservationService().List(c.Request.Context(), user, pageFromQuery(c))
	if err != nil {
		respondServiceError(c, "list_reservations", err)
		return
	}
	respondPage(c, reservations, pagination)
}

// CreateReservation handles POST /api/v1/reservations
func CreateReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	reservation, err := reservationService().Create(c.Request.Context(), user, req.input())
	if err != nil {
		respondServiceError(c, "create_reservation", err)
		return
	}
	respondData(c, http.StatusCreated, reservation)
}

// GetReservation handles GET /api/v1/reservations/:id
func GetReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := reservationService().Get(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, "get_reservation", err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// UpdateReservation handles PUT /api/v1/reservations/:id
func UpdateReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	reservation, err := reservationService().Update(c.Request.Context(), user, id, req.input())
	if err != nil {
		respondServiceError(c, "update_reservation", err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// CancelReservation handles DELETE /api/v1/reservations/:id. The row is
// kept with status cancelled.
func CancelReservation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := reservationService().Cancel(c.Request.Context(), user, id)
	if err != nil {
		respondServiceError(c, "cancel_reservation", err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// UpdateReservationStatus handles PATCH /api/v1/reservations/:id/status (staff only)
func UpdateReservationStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateReservationStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	reservation, err := reservationService().SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, "update_reservation_status", err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}
