package api

import (
	"encoding/json"
	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	apperrors "floorcrm/internal/errors"
	"floorcrm/internal/repository"
	"floorcrm/internal/service"
	"floorcrm/internal/utils"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// AdminHandler serves the back-office surface: team management, schedule
// edits, time-off decisions and appointment administration.
type AdminHandler struct {
	Reps       *service.RepService
	Booking    *service.BookingService
	Assignment *service.AssignmentService
}

func NewAdminHandler(reps *service.RepService, booking *service.BookingService, assignment *service.AssignmentService) *AdminHandler {
	return &AdminHandler{Reps: reps, Booking: booking, Assignment: assignment}
}

func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil && id > 0
}

func writeRepoError(w http.ResponseWriter, err error) {
	apperrors.ForStore(err, repository.ErrNotFound).Write(w)
}

func (h *AdminHandler) ListReps(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	reps, err := h.Reps.ListReps(includeInactive)
	if err != nil {
		apperrors.Internal("Database error").Write(w)
		return
	}
	json.NewEncoder(w).Encode(entities.NewRepViews(reps))
}

func (h *AdminHandler) CreateRep(w http.ResponseWriter, r *http.Request) {
	var req CreateRepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	rep := &db.SalesRep{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := h.Reps.CreateRep(rep); err != nil {
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.NewRepView(*rep))
}

func (h *AdminHandler) DeactivateRep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	result, err := h.Reps.DeactivateRep(id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Sales rep deactivated",
		"reassignment": result,
	})
}

func (h *AdminHandler) GetRepSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	schedule, err := h.Reps.GetRepSchedule(id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(entities.RepScheduleView{
		Availability: entities.NewWeeklyAvailabilityViews(schedule.Availability),
		BlockedTimes: entities.NewBlockedTimeViews(schedule.BlockedTimes),
		TimeOff:      entities.NewTimeOffViews(schedule.TimeOff),
	})
}

func (h *AdminHandler) AddWeeklyAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	var req WeeklyAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	window, err := h.Reps.AddWeeklyAvailability(id, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		if err == repository.ErrNotFound {
			apperrors.NotFound("Sales rep not found").Write(w)
			return
		}
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.NewWeeklyAvailabilityView(*window))
}

func (h *AdminHandler) DeleteWeeklyAvailability(w http.ResponseWriter, r *http.Request) {
	repID, okRep := pathID(r, "id")
	windowID, okWindow := pathID(r, "windowID")
	if !okRep || !okWindow {
		apperrors.BadRequest("Invalid ID").Write(w)
		return
	}
	if err := h.Reps.RemoveWeeklyAvailability(repID, windowID); err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Availability window removed"})
}

func (h *AdminHandler) AddBlockedTime(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	var req BlockedTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		apperrors.BadRequest("date must be YYYY-MM-DD").Write(w)
		return
	}
	block, err := h.Reps.AddBlockedTime(id, date, req.StartTime, req.EndTime, req.IsAllDay, req.Reason)
	if err != nil {
		if err == repository.ErrNotFound {
			apperrors.NotFound("Sales rep not found").Write(w)
			return
		}
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.NewBlockedTimeView(*block))
}

func (h *AdminHandler) DeleteBlockedTime(w http.ResponseWriter, r *http.Request) {
	repID, okRep := pathID(r, "id")
	blockID, okBlock := pathID(r, "blockID")
	if !okRep || !okBlock {
		apperrors.BadRequest("Invalid ID").Write(w)
		return
	}
	if err := h.Reps.RemoveBlockedTime(repID, blockID); err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Blocked time removed"})
}

func (h *AdminHandler) RequestTimeOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	var req TimeOffRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		apperrors.BadRequest("start_date must be YYYY-MM-DD").Write(w)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		apperrors.BadRequest("end_date must be YYYY-MM-DD").Write(w)
		return
	}
	request, err := h.Reps.RequestTimeOff(id, start, end)
	if err != nil {
		if err == repository.ErrNotFound {
			apperrors.NotFound("Sales rep not found").Write(w)
			return
		}
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.NewTimeOffView(*request))
}

func (h *AdminHandler) ResolveTimeOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid time off ID").Write(w)
		return
	}
	var req TimeOffStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	result, err := h.Reps.ResolveTimeOff(id, req.Status, req.AdminNotes)
	if err != nil {
		if err == repository.ErrNotFound {
			apperrors.NotFound("Time off request not found").Write(w)
			return
		}
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	resp := map[string]interface{}{"message": "Time off request " + req.Status}
	if result != nil {
		resp["reassignment"] = result
	}
	json.NewEncoder(w).Encode(resp)
}

// ReassignRep moves every upcoming appointment off a rep, optionally
// limited to a date range in the body. An empty body means "from today on".
func (h *AdminHandler) ReassignRep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid rep ID").Write(w)
		return
	}
	var req ReassignRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	var rng *entities.DateRange
	if req.StartDate != "" || req.EndDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			apperrors.BadRequest("start_date must be YYYY-MM-DD").Write(w)
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			apperrors.BadRequest("end_date must be YYYY-MM-DD").Write(w)
			return
		}
		rng = &entities.DateRange{Start: start, End: end}
	}
	result := h.Assignment.ReassignAppointments(id, rng)
	json.NewEncoder(w).Encode(result)
}

func (h *AdminHandler) RepWorkload(w http.ResponseWriter, r *http.Request) {
	var req WorkloadRequest
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
	statuses, err := h.Assignment.GetAvailableRepsWithWorkload(date, req.Time)
	if err != nil {
		apperrors.Internal("Error loading workload").Write(w)
		return
	}
	json.NewEncoder(w).Encode(statuses)
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			apperrors.BadRequest("date must be YYYY-MM-DD").Write(w)
			return
		}
		date = &parsed
	}
	repID := 0
	if raw := r.URL.Query().Get("rep_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.BadRequest("Invalid rep_id").Write(w)
			return
		}
		repID = parsed
	}
	status := r.URL.Query().Get("status")

	appointments, err := h.Booking.ListAppointments(date, repID, status)
	if err != nil {
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	json.NewEncoder(w).Encode(entities.NewAppointmentViews(appointments))
}

func (h *AdminHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid appointment ID").Write(w)
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request").Write(w)
		return
	}
	if err := h.Booking.UpdateAppointmentStatus(id, req.Status); err != nil {
		if err == repository.ErrNotFound {
			apperrors.NotFound("Appointment not found").Write(w)
			return
		}
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Appointment status updated"})
}

func (h *AdminHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid appointment ID").Write(w)
		return
	}
	var req RescheduleRequest
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
	result := h.Booking.RescheduleAppointment(id, date, req.Time, req.DurationMinutes)
	if !result.Success {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *AdminHandler) ReassignAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid appointment ID").Write(w)
		return
	}
	result := h.Booking.ReassignAppointment(id)
	if !result.Success {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *AdminHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		apperrors.BadRequest("Invalid appointment ID").Write(w)
		return
	}
	if err := h.Booking.DeleteAppointment(id); err != nil {
		writeRepoError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Appointment deleted"})
}
