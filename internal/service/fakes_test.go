package service

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/repository"
	"floorcrm/internal/utils"
)

// fakeStore is an in-memory stand-in for the schedule and appointment
// repositories, filtering the same way the SQL does.
type fakeStore struct {
	reps    []db.SalesRep
	windows []db.WeeklyAvailability
	blocked []db.BlockedTime
	timeOff []db.TimeOffRequest
	appts   []db.Appointment

	nextID    int
	updateErr error
}

func (f *fakeStore) ListActiveReps() ([]db.SalesRep, error) {
	var active []db.SalesRep
	for _, rep := range f.reps {
		if rep.IsActive {
			active = append(active, rep)
		}
	}
	return active, nil
}

func (f *fakeStore) ActiveWindowsForDay(dayOfWeek int) ([]db.WeeklyAvailability, error) {
	var windows []db.WeeklyAvailability
	for _, w := range f.windows {
		if w.IsActive && w.DayOfWeek == dayOfWeek {
			windows = append(windows, w)
		}
	}
	return windows, nil
}

func (f *fakeStore) BlockedTimesForDate(date time.Time) ([]db.BlockedTime, error) {
	var blocked []db.BlockedTime
	for _, b := range f.blocked {
		if utils.SameDate(b.BlockedDate, date) {
			blocked = append(blocked, b)
		}
	}
	return blocked, nil
}

func (f *fakeStore) ApprovedTimeOffForDate(date time.Time) ([]db.TimeOffRequest, error) {
	var requests []db.TimeOffRequest
	for _, t := range f.timeOff {
		if t.Status == db.TimeOffApproved && !date.Before(t.StartDate) && !date.After(t.EndDate) {
			requests = append(requests, t)
		}
	}
	return requests, nil
}

func (f *fakeStore) ActiveAppointmentsForDate(date time.Time) ([]db.Appointment, error) {
	var appts []db.Appointment
	for _, a := range f.appts {
		if a.Occupies() && utils.SameDate(a.ScheduledDate, date) {
			appts = append(appts, a)
		}
	}
	return appts, nil
}

func (f *fakeStore) AppointmentsInRange(repIDs []int, start, end time.Time) ([]db.Appointment, error) {
	ids := make(map[int]bool, len(repIDs))
	for _, id := range repIDs {
		ids[id] = true
	}
	var appts []db.Appointment
	for _, a := range f.appts {
		if !a.Occupies() || !a.AssignedTo.Valid || !ids[int(a.AssignedTo.Int64)] {
			continue
		}
		if a.ScheduledDate.Before(start) || a.ScheduledDate.After(end) {
			continue
		}
		appts = append(appts, a)
	}
	return appts, nil
}

func (f *fakeStore) AssignedAppointments(repID int, from time.Time, rng *entities.DateRange) ([]db.Appointment, error) {
	var appts []db.Appointment
	for _, a := range f.appts {
		if !a.AssignedTo.Valid || int(a.AssignedTo.Int64) != repID {
			continue
		}
		if a.Status != db.StatusScheduled && a.Status != db.StatusConfirmed {
			continue
		}
		// A range replaces the from bound, exactly as the SQL swaps the
		// date condition.
		if rng != nil {
			if !rng.Contains(a.ScheduledDate) {
				continue
			}
		} else if a.ScheduledDate.Before(from) {
			continue
		}
		appts = append(appts, a)
	}
	sort.Slice(appts, func(i, j int) bool {
		if !appts[i].ScheduledDate.Equal(appts[j].ScheduledDate) {
			return appts[i].ScheduledDate.Before(appts[j].ScheduledDate)
		}
		return appts[i].ScheduledTime < appts[j].ScheduledTime
	})
	return appts, nil
}

func (f *fakeStore) CreateAppointment(a *db.Appointment) error {
	f.nextID++
	a.ID = f.nextID
	f.appts = append(f.appts, *a)
	return nil
}

func (f *fakeStore) UpdateAssignment(id, repID int, adminNote string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].AssignedTo.Int64 = int64(repID)
			f.appts[i].AssignedTo.Valid = true
			f.appts[i].AdminNotes = appendNote(f.appts[i].AdminNotes, adminNote)
			return nil
		}
	}
	return repository.ErrNotFound
}

// appendNote mirrors the admin_notes accumulation in the UPDATE statements.
func appendNote(existing, note string) string {
	return strings.TrimSpace(existing + "\n" + note)
}

func (f *fakeStore) GetAppointment(id int) (*db.Appointment, error) {
	for i := range f.appts {
		if f.appts[i].ID == id {
			a := f.appts[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListAppointments(date *time.Time, repID int, status string) ([]db.Appointment, error) {
	var appts []db.Appointment
	for _, a := range f.appts {
		if date != nil && !utils.SameDate(a.ScheduledDate, *date) {
			continue
		}
		if repID != 0 && (!a.AssignedTo.Valid || int(a.AssignedTo.Int64) != repID) {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		appts = append(appts, a)
	}
	return appts, nil
}

func (f *fakeStore) UpdateStatus(id int, status string) error {
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) Reschedule(id int, date time.Time, clock string, durationMinutes, repID int, adminNote string) error {
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts[i].ScheduledDate = date
			f.appts[i].ScheduledTime = clock
			f.appts[i].DurationMinutes = durationMinutes
			f.appts[i].AssignedTo = assigned(repID)
			f.appts[i].Status = db.StatusRescheduled
			f.appts[i].AdminNotes = appendNote(f.appts[i].AdminNotes, adminNote)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) DeleteAppointment(id int) error {
	for i := range f.appts {
		if f.appts[i].ID == id {
			f.appts = append(f.appts[:i], f.appts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) ListReps(activeOnly bool) ([]db.SalesRep, error) {
	if activeOnly {
		return f.ListActiveReps()
	}
	return append([]db.SalesRep(nil), f.reps...), nil
}

func (f *fakeStore) GetRep(id int) (*db.SalesRep, error) {
	for i := range f.reps {
		if f.reps[i].ID == id {
			rep := f.reps[i]
			return &rep, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateRep(rep *db.SalesRep) error {
	f.nextID++
	rep.ID = f.nextID
	rep.IsActive = true
	f.reps = append(f.reps, *rep)
	return nil
}

func (f *fakeStore) DeactivateRep(id int) error {
	for i := range f.reps {
		if f.reps[i].ID == id {
			f.reps[i].IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) ListWeeklyAvailability(repID int) ([]db.WeeklyAvailability, error) {
	var windows []db.WeeklyAvailability
	for _, w := range f.windows {
		if w.SalesRepID == repID {
			windows = append(windows, w)
		}
	}
	return windows, nil
}

func (f *fakeStore) CreateWeeklyAvailability(w *db.WeeklyAvailability) error {
	f.nextID++
	w.ID = f.nextID
	w.IsActive = true
	f.windows = append(f.windows, *w)
	return nil
}

func (f *fakeStore) DeleteWeeklyAvailability(repID, windowID int) error {
	for i := range f.windows {
		if f.windows[i].ID == windowID && f.windows[i].SalesRepID == repID {
			f.windows = append(f.windows[:i], f.windows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) ListBlockedTimes(repID int) ([]db.BlockedTime, error) {
	var blocked []db.BlockedTime
	for _, b := range f.blocked {
		if b.SalesRepID == repID {
			blocked = append(blocked, b)
		}
	}
	return blocked, nil
}

func (f *fakeStore) CreateBlockedTime(b *db.BlockedTime) error {
	f.nextID++
	b.ID = f.nextID
	f.blocked = append(f.blocked, *b)
	return nil
}

func (f *fakeStore) DeleteBlockedTime(repID, blockID int) error {
	for i := range f.blocked {
		if f.blocked[i].ID == blockID && f.blocked[i].SalesRepID == repID {
			f.blocked = append(f.blocked[:i], f.blocked[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) ListTimeOff(repID int) ([]db.TimeOffRequest, error) {
	var requests []db.TimeOffRequest
	for _, t := range f.timeOff {
		if t.SalesRepID == repID {
			requests = append(requests, t)
		}
	}
	return requests, nil
}

func (f *fakeStore) CreateTimeOff(t *db.TimeOffRequest) error {
	f.nextID++
	t.ID = f.nextID
	f.timeOff = append(f.timeOff, *t)
	return nil
}

func (f *fakeStore) GetTimeOff(id int) (*db.TimeOffRequest, error) {
	for i := range f.timeOff {
		if f.timeOff[i].ID == id {
			t := f.timeOff[i]
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) UpdateTimeOffStatus(id int, status, adminNotes string) error {
	for i := range f.timeOff {
		if f.timeOff[i].ID == id {
			f.timeOff[i].Status = status
			f.timeOff[i].AdminNotes = adminNotes
			return nil
		}
	}
	return repository.ErrNotFound
}

// Fixture builders. The fixture date is a Monday so day-of-week fields stay
// readable in the tests.

func activeRep(id int, firstName, lastName string) db.SalesRep {
	return db.SalesRep{ID: id, FirstName: firstName, LastName: lastName, Email: firstName + "@summitflooring.test", IsActive: true}
}

func window(repID, dayOfWeek int, start, end string) db.WeeklyAvailability {
	return db.WeeklyAvailability{SalesRepID: repID, DayOfWeek: dayOfWeek, StartTime: start, EndTime: end, IsActive: true}
}

func assigned(repID int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(repID), Valid: true}
}

func appointment(id, repID int, date time.Time, clock string, durationMinutes int, status string) db.Appointment {
	return db.Appointment{
		ID:              id,
		CustomerID:      100 + id,
		AssignedTo:      assigned(repID),
		ScheduledDate:   utils.DateOnly(date),
		ScheduledTime:   clock,
		DurationMinutes: durationMinutes,
		Status:          status,
	}
}
