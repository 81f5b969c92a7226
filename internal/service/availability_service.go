package service

import (
	"fmt"
	"time"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/utils"
)

// AvailabilityStore is the slice of the schedule store the resolver needs.
type AvailabilityStore interface {
	ListActiveReps() ([]db.SalesRep, error)
	ActiveWindowsForDay(dayOfWeek int) ([]db.WeeklyAvailability, error)
	BlockedTimesForDate(date time.Time) ([]db.BlockedTime, error)
	ApprovedTimeOffForDate(date time.Time) ([]db.TimeOffRequest, error)
}

// AppointmentStore is the slice of the appointment store the scheduling
// engine needs.
type AppointmentStore interface {
	ActiveAppointmentsForDate(date time.Time) ([]db.Appointment, error)
	AppointmentsInRange(repIDs []int, start, end time.Time) ([]db.Appointment, error)
	AssignedAppointments(repID int, from time.Time, rng *entities.DateRange) ([]db.Appointment, error)
	CreateAppointment(a *db.Appointment) error
	UpdateAssignment(id, repID int, adminNote string) error
}

// AvailabilityService resolves per-rep availability for concrete slots.
type AvailabilityService struct {
	schedules    AvailabilityStore
	appointments AppointmentStore
}

func NewAvailabilityService(schedules AvailabilityStore, appointments AppointmentStore) *AvailabilityService {
	return &AvailabilityService{schedules: schedules, appointments: appointments}
}

// DaySchedule is a point-in-time snapshot of everything that affects
// availability on one date: the active team, that day's weekly windows,
// blocked times, approved time off and occupying appointments. All
// availability decisions for a request run against one snapshot, fetched in
// a fixed number of batched queries.
type DaySchedule struct {
	Date time.Time
	Reps []db.SalesRep

	repByID      map[int]db.SalesRep
	windowsByRep map[int][]db.WeeklyAvailability
	blockedByRep map[int][]db.BlockedTime
	onTimeOff    map[int]bool
	apptsByRep   map[int][]db.Appointment
}

// LoadDaySchedule fetches the snapshot for one date.
func (s *AvailabilityService) LoadDaySchedule(date time.Time) (*DaySchedule, error) {
	date = utils.DateOnly(date)

	reps, err := s.schedules.ListActiveReps()
	if err != nil {
		return nil, fmt.Errorf("loading sales reps: %w", err)
	}
	windows, err := s.schedules.ActiveWindowsForDay(int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("loading weekly availability: %w", err)
	}
	blocked, err := s.schedules.BlockedTimesForDate(date)
	if err != nil {
		return nil, fmt.Errorf("loading blocked times: %w", err)
	}
	timeOff, err := s.schedules.ApprovedTimeOffForDate(date)
	if err != nil {
		return nil, fmt.Errorf("loading time off: %w", err)
	}
	appointments, err := s.appointments.ActiveAppointmentsForDate(date)
	if err != nil {
		return nil, fmt.Errorf("loading appointments: %w", err)
	}

	day := &DaySchedule{
		Date:         date,
		Reps:         reps,
		repByID:      make(map[int]db.SalesRep, len(reps)),
		windowsByRep: make(map[int][]db.WeeklyAvailability),
		blockedByRep: make(map[int][]db.BlockedTime),
		onTimeOff:    make(map[int]bool),
		apptsByRep:   make(map[int][]db.Appointment),
	}
	for _, rep := range reps {
		day.repByID[rep.ID] = rep
	}
	for _, w := range windows {
		day.windowsByRep[w.SalesRepID] = append(day.windowsByRep[w.SalesRepID], w)
	}
	for _, b := range blocked {
		day.blockedByRep[b.SalesRepID] = append(day.blockedByRep[b.SalesRepID], b)
	}
	for _, t := range timeOff {
		day.onTimeOff[t.SalesRepID] = true
	}
	for _, a := range appointments {
		if a.AssignedTo.Valid {
			repID := int(a.AssignedTo.Int64)
			day.apptsByRep[repID] = append(day.apptsByRep[repID], a)
		}
	}
	return day, nil
}

// IsRepAvailable checks one rep for a slot starting at clock and running
// durationMinutes. Checks run in order and any failure short-circuits:
// active rep, weekly window, blocked time, time off, appointment conflict.
func (d *DaySchedule) IsRepAvailable(repID int, clock string, durationMinutes int) bool {
	if _, ok := d.repByID[repID]; !ok {
		return false
	}

	// The window close is compared against the slot start only, so a slot
	// whose duration runs past the end of the window still passes. This is
	// longstanding booking behavior and is kept as-is.
	inWindow := false
	for _, w := range d.windowsByRep[repID] {
		if w.IsActive && w.StartTime <= clock && w.EndTime >= clock {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false
	}

	for _, b := range d.blockedByRep[repID] {
		if b.IsAllDay {
			return false
		}
		if b.StartTime.Valid && b.EndTime.Valid &&
			b.StartTime.String <= clock && clock < b.EndTime.String {
			return false
		}
	}

	if d.onTimeOff[repID] {
		return false
	}

	slotEnd := utils.AddMinutesToClock(clock, durationMinutes)
	for _, a := range d.apptsByRep[repID] {
		aptEnd := utils.AddMinutesToClock(a.ScheduledTime, a.DurationMinutes)
		if clock < aptEnd && a.ScheduledTime < slotEnd {
			return false
		}
	}
	return true
}

// AvailableReps returns the candidate set for a slot: every active rep
// passing all availability checks, in team-roster order.
func (d *DaySchedule) AvailableReps(clock string, durationMinutes int) []db.SalesRep {
	var available []db.SalesRep
	for _, rep := range d.Reps {
		if d.IsRepAvailable(rep.ID, clock, durationMinutes) {
			available = append(available, rep)
		}
	}
	return available
}

// CountAvailable is AvailableReps without materializing the slice.
func (d *DaySchedule) CountAvailable(clock string, durationMinutes int) int {
	count := 0
	for _, rep := range d.Reps {
		if d.IsRepAvailable(rep.ID, clock, durationMinutes) {
			count++
		}
	}
	return count
}

// WindowBounds returns the earliest start and latest end across all reps'
// windows for the day, or ok=false when nobody has a window.
func (d *DaySchedule) WindowBounds() (start, end string, ok bool) {
	for _, windows := range d.windowsByRep {
		for _, w := range windows {
			if !w.IsActive {
				continue
			}
			if !ok || w.StartTime < start {
				start = w.StartTime
			}
			if !ok || w.EndTime > end {
				end = w.EndTime
			}
			ok = true
		}
	}
	return start, end, ok
}

// GetAvailableReps is the request-level candidate selector: it loads the
// snapshot and returns the reps available for the slot. An empty set is a
// valid outcome, not an error.
func (s *AvailabilityService) GetAvailableReps(date time.Time, clock string, durationMinutes int) ([]entities.RepSummary, error) {
	day, err := s.LoadDaySchedule(date)
	if err != nil {
		return nil, err
	}
	reps := day.AvailableReps(clock, durationMinutes)
	summaries := make([]entities.RepSummary, 0, len(reps))
	for _, rep := range reps {
		summaries = append(summaries, entities.RepSummary{
			RepID:     rep.ID,
			FirstName: rep.FirstName,
			LastName:  rep.LastName,
			Email:     rep.Email,
			Phone:     rep.Phone,
		})
	}
	return summaries, nil
}
