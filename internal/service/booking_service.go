package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/utils"
)

const (
	msgNoOpenSlots     = "No open time slots for the requested date"
	msgBookingFailed   = "Failed to book appointment"
	msgSlotLookupError = "Failed to find an open time slot"
)

var validAppointmentStatuses = map[string]bool{
	db.StatusScheduled:   true,
	db.StatusConfirmed:   true,
	db.StatusCompleted:   true,
	db.StatusCancelled:   true,
	db.StatusNoShow:      true,
	db.StatusRescheduled: true,
}

// RepDirectory is the schedule-store slice the booking path needs to look
// up the assigned rep's contact details.
type RepDirectory interface {
	GetRep(id int) (*db.SalesRep, error)
}

// AppointmentAdminStore extends the engine's appointment store with the
// lifecycle operations the admin surface drives.
type AppointmentAdminStore interface {
	AppointmentStore
	GetAppointment(id int) (*db.Appointment, error)
	ListAppointments(date *time.Time, repID int, status string) ([]db.Appointment, error)
	UpdateStatus(id int, status string) error
	Reschedule(id int, date time.Time, clock string, durationMinutes, repID int, adminNote string) error
	DeleteAppointment(id int) error
}

// BookingService drives the appointment lifecycle: intake with
// auto-assignment, status changes, reschedules and administrative deletes.
type BookingService struct {
	assignment   *AssignmentService
	slots        *SlotService
	schedules    RepDirectory
	appointments AppointmentAdminStore
	notifier     *NotifierService
}

func NewBookingService(
	assignment *AssignmentService,
	slots *SlotService,
	schedules RepDirectory,
	appointments AppointmentAdminStore,
	notifier *NotifierService,
) *BookingService {
	return &BookingService{
		assignment:   assignment,
		slots:        slots,
		schedules:    schedules,
		appointments: appointments,
		notifier:     notifier,
	}
}

// BookAppointment assigns a rep and writes the appointment. When the
// request names no time, the earliest slot of the day that can actually
// hold the request is used. The rep is notified after the write;
// notification failure never fails the booking.
func (s *BookingService) BookAppointment(req entities.BookingRequest) entities.BookingResult {
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = DefaultAppointmentDuration
	}

	criteria := entities.AssignmentCriteria{
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: req.AppointmentType,
		CustomerID:      req.CustomerID,
		PreferredRepID:  req.PreferredRepID,
	}

	var assignment entities.AssignmentResult
	clock := req.Time
	if clock == "" {
		// The slot grid reports openness at its own granularity, so a
		// listed slot can still be too short for this request. Each slot
		// is tried with the request's real duration until one assigns.
		slots, err := s.slots.GetDaySlots(req.Date, DefaultSlotGranularity)
		if err != nil {
			log.Printf("Error finding open slot for %s: %v", utils.DateKey(req.Date), err)
			return entities.BookingResult{Success: false, Error: msgSlotLookupError}
		}
		for _, slot := range slots {
			criteria.Time = slot.Time
			if attempt := s.assignment.AssignSalesRep(criteria); attempt.Success {
				assignment = attempt
				clock = slot.Time
				break
			}
		}
		if clock == "" {
			return entities.BookingResult{Success: false, Error: msgNoOpenSlots}
		}
	} else {
		assignment = s.assignment.AssignSalesRep(criteria)
		if !assignment.Success {
			return entities.BookingResult{Success: false, Error: assignment.Error}
		}
	}

	appointment := &db.Appointment{
		CustomerID:      req.CustomerID,
		AssignedTo:      sql.NullInt64{Int64: int64(assignment.AssignedRepID), Valid: true},
		ScheduledDate:   utils.DateOnly(req.Date),
		ScheduledTime:   clock,
		DurationMinutes: req.DurationMinutes,
		AppointmentType: req.AppointmentType,
		Status:          db.StatusScheduled,
		Notes:           req.Notes,
	}
	if err := s.appointments.CreateAppointment(appointment); err != nil {
		log.Printf("Error creating appointment: %v", err)
		return entities.BookingResult{Success: false, Error: msgBookingFailed}
	}

	s.notifyAssignment(assignment.AssignedRepID, appointment)

	return entities.BookingResult{
		Success:         true,
		AppointmentID:   appointment.ID,
		AssignedRepID:   assignment.AssignedRepID,
		AssignedRepName: assignment.AssignedRepName,
		ScheduledTime:   clock,
		Reason:          assignment.Reason,
	}
}

func (s *BookingService) notifyAssignment(repID int, apt *db.Appointment) {
	rep, err := s.schedules.GetRep(repID)
	if err != nil {
		log.Printf("WARNING: appointment %d booked but rep %d lookup failed, skipping notification: %v",
			apt.ID, repID, err)
		return
	}
	notification := entities.AppointmentNotification{
		RepName:    rep.FullName(),
		RepEmail:   rep.Email,
		RepPhone:   rep.Phone,
		CustomerID: apt.CustomerID,
		Date:       apt.ScheduledDate,
		Time:       apt.ScheduledTime,
		Duration:   apt.DurationMinutes,
		Type:       apt.AppointmentType,
	}
	s.notifier.SendAssignmentEmail(notification)
	s.notifier.SendAssignmentSMS(notification)
}

func (s *BookingService) GetAppointment(id int) (*db.Appointment, error) {
	return s.appointments.GetAppointment(id)
}

func (s *BookingService) ListAppointments(date *time.Time, repID int, status string) ([]db.Appointment, error) {
	if status != "" && !validAppointmentStatuses[status] {
		return nil, fmt.Errorf("invalid appointment status %q", status)
	}
	return s.appointments.ListAppointments(date, repID, status)
}

func (s *BookingService) UpdateAppointmentStatus(id int, status string) error {
	if !validAppointmentStatuses[status] {
		return fmt.Errorf("invalid appointment status %q", status)
	}
	return s.appointments.UpdateStatus(id, status)
}

// RescheduleAppointment moves an appointment to a new slot, re-running
// assignment for it. The current rep is preferred so an unchanged rep
// keeps the appointment whenever they are free at the new time.
func (s *BookingService) RescheduleAppointment(id int, date time.Time, clock string, durationMinutes int) entities.AssignmentResult {
	apt, err := s.appointments.GetAppointment(id)
	if err != nil {
		log.Printf("Error loading appointment %d for reschedule: %v", id, err)
		return entities.AssignmentResult{Success: false, Error: "Appointment not found"}
	}
	if durationMinutes <= 0 {
		durationMinutes = apt.DurationMinutes
	}

	var preferred *int
	if apt.AssignedTo.Valid {
		current := int(apt.AssignedTo.Int64)
		preferred = &current
	}

	result := s.assignment.AssignSalesRep(entities.AssignmentCriteria{
		Date:            date,
		Time:            clock,
		DurationMinutes: durationMinutes,
		AppointmentType: apt.AppointmentType,
		CustomerID:      apt.CustomerID,
		PreferredRepID:  preferred,
	})
	if !result.Success {
		return result
	}

	note := fmt.Sprintf("Rescheduled to %s %s, assigned to %s",
		utils.DateKey(date), clock, result.AssignedRepName)
	if err := s.appointments.Reschedule(id, utils.DateOnly(date), clock, durationMinutes, result.AssignedRepID, note); err != nil {
		log.Printf("Error rescheduling appointment %d: %v", id, err)
		return entities.AssignmentResult{Success: false, Error: "Failed to reschedule appointment"}
	}
	return result
}

// ReassignAppointment finds a new rep for one appointment. The current rep
// is not preferred; the appointment's own slot conflict keeps them out of
// the candidate set.
func (s *BookingService) ReassignAppointment(id int) entities.AssignmentResult {
	apt, err := s.appointments.GetAppointment(id)
	if err != nil {
		log.Printf("Error loading appointment %d for reassignment: %v", id, err)
		return entities.AssignmentResult{Success: false, Error: "Appointment not found"}
	}
	if apt.Status != db.StatusScheduled && apt.Status != db.StatusConfirmed {
		return entities.AssignmentResult{Success: false, Error: "Only scheduled or confirmed appointments can be reassigned"}
	}

	result := s.assignment.AssignSalesRep(entities.AssignmentCriteria{
		Date:            apt.ScheduledDate,
		Time:            apt.ScheduledTime,
		DurationMinutes: apt.DurationMinutes,
		AppointmentType: apt.AppointmentType,
		CustomerID:      apt.CustomerID,
	})
	if !result.Success {
		return result
	}

	note := fmt.Sprintf("Reassigned to %s", result.AssignedRepName)
	if err := s.appointments.UpdateAssignment(id, result.AssignedRepID, note); err != nil {
		log.Printf("Error updating appointment %d assignment: %v", id, err)
		return entities.AssignmentResult{Success: false, Error: "Failed to reassign appointment"}
	}
	return result
}

func (s *BookingService) DeleteAppointment(id int) error {
	return s.appointments.DeleteAppointment(id)
}
