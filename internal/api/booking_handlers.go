package api

import (
	"encoding/json"
	"floorcrm/internal/entities"
	apperrors "floorcrm/internal/errors"
	"floorcrm/internal/repository"
	"floorcrm/internal/service"
	"floorcrm/internal/utils"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// BookingHandler serves the public booking surface: slot discovery,
// appointment intake and rep availability lookups.
type BookingHandler struct {
	Booking      *service.BookingService
	Slots        *service.SlotService
	Availability *service.AvailabilityService
	Assignment   *service.AssignmentService
}

func NewBookingHandler(
	booking *service.BookingService,
	slots *service.SlotService,
	availability *service.AvailabilityService,
	assignment *service.AssignmentService,
) *BookingHandler {
	return &BookingHandler{
		Booking:      booking,
		Slots:        slots,
		Availability: availability,
		Assignment:   assignment,
	}
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func (h *BookingHandler) GetDaySlots(w http.ResponseWriter, r *http.Request) {
	var req SlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		apperrors.BadRequest("date must be YYYY-MM-DD").Write(w)
		return
	}
	slots, err := h.Slots.GetDaySlots(date, service.DefaultSlotGranularity)
	if err != nil {
		apperrors.Internal("Error loading time slots").Write(w)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"date":  req.Date,
		"slots": slots,
	})
}

func (h *BookingHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	if req.CustomerID <= 0 {
		apperrors.BadRequest("customer_id is required").Write(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		apperrors.BadRequest("date must be YYYY-MM-DD").Write(w)
		return
	}
	if req.Time != "" && !utils.ValidClockTime(req.Time) {
		apperrors.BadRequest("time must be HH:MM").Write(w)
		return
	}

	result := h.Booking.BookAppointment(entities.BookingRequest{
		CustomerID:      req.CustomerID,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: req.AppointmentType,
		Notes:           req.Notes,
		PreferredRepID:  req.PreferredRepID,
	})
	if !result.Success {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *BookingHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperrors.BadRequest("Invalid appointment ID").Write(w)
		return
	}
	apt, err := h.Booking.GetAppointment(id)
	if err != nil {
		apperrors.ForStore(err, repository.ErrNotFound).Write(w)
		return
	}
	json.NewEncoder(w).Encode(entities.NewAppointmentView(*apt))
}

func (h *BookingHandler) GetAvailableReps(w http.ResponseWriter, r *http.Request) {
	var req RepAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		apperrors.BadRequest("date must be YYYY-MM-DD").Write(w)
		return
	}
	if !utils.ValidClockTime(req.Time) {
		apperrors.BadRequest("time must be HH:MM").Write(w)
		return
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = service.DefaultAppointmentDuration
	}
	reps, err := h.Availability.GetAvailableReps(date, req.Time, duration)
	if err != nil {
		apperrors.Internal("Error checking availability").Write(w)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"available_reps": reps,
		"count":          len(reps),
	})
}
