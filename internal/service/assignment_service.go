package service

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/utils"
)

const (
	// DefaultAppointmentDuration is assumed when a request carries no
	// duration, matching the standard in-home estimate length.
	DefaultAppointmentDuration = 60

	reasonPreferred = "Preferred sales representative assigned"
	reasonAuto      = "Auto-assigned based on availability and workload balance"

	msgNoRepsAvailable = "No sales representatives are available at the requested time"
	msgAssignFailed    = "Failed to assign sales representative"
	msgReassignFailed  = "Failed to reassign appointments"
)

// AssignmentService picks the rep for an appointment: candidate selection
// via the availability resolver, then workload-balanced scoring.
type AssignmentService struct {
	availability *AvailabilityService
	appointments AppointmentStore

	// now and jitter are injectable so tests can fix the reference date and
	// force deterministic scoring.
	now    func() time.Time
	jitter func() float64
}

func NewAssignmentService(availability *AvailabilityService, appointments AppointmentStore) *AssignmentService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &AssignmentService{
		availability: availability,
		appointments: appointments,
		now:          time.Now,
		jitter:       func() float64 { return rng.Float64() * 5 },
	}
}

// WithClock overrides the reference-time source.
func (s *AssignmentService) WithClock(now func() time.Time) *AssignmentService {
	s.now = now
	return s
}

// WithJitter overrides the tie-break jitter source. The source should
// return values in [0, 5); a source returning 0 makes scoring deterministic.
func (s *AssignmentService) WithJitter(jitter func() float64) *AssignmentService {
	s.jitter = jitter
	return s
}

// AssignSalesRep selects the best available rep for the requested slot. A
// preferred rep that is in the candidate set wins outright; otherwise the
// candidates are scored against the team's current workload.
func (s *AssignmentService) AssignSalesRep(c entities.AssignmentCriteria) entities.AssignmentResult {
	if c.DurationMinutes <= 0 {
		c.DurationMinutes = DefaultAppointmentDuration
	}

	day, err := s.availability.LoadDaySchedule(c.Date)
	if err != nil {
		log.Printf("Error loading schedule for assignment: %v", err)
		return entities.AssignmentResult{Success: false, Error: msgAssignFailed}
	}

	candidates := day.AvailableReps(c.Time, c.DurationMinutes)
	if len(candidates) == 0 {
		return entities.AssignmentResult{Success: false, Error: msgNoRepsAvailable}
	}

	if c.PreferredRepID != nil {
		for _, rep := range candidates {
			if rep.ID == *c.PreferredRepID {
				return entities.AssignmentResult{
					Success:         true,
					AssignedRepID:   rep.ID,
					AssignedRepName: rep.FullName(),
					Reason:          reasonPreferred,
				}
			}
		}
	}

	workloads, err := s.WorkloadSnapshots(candidates, s.now())
	if err != nil {
		log.Printf("Error computing workload for assignment: %v", err)
		return entities.AssignmentResult{Success: false, Error: msgAssignFailed}
	}

	best := s.selectBestRep(workloads)
	return entities.AssignmentResult{
		Success:         true,
		AssignedRepID:   best.RepID,
		AssignedRepName: best.FirstName + " " + best.LastName,
		Reason:          reasonAuto,
	}
}

// WorkloadSnapshots computes each rep's load for the Sunday-to-Saturday
// week containing the reference date: appointment count that week,
// appointment count on the reference date, and total booked hours. One
// batched range query covers every rep; reps with no appointments get a
// zero snapshot, never an omission.
func (s *AssignmentService) WorkloadSnapshots(reps []db.SalesRep, reference time.Time) ([]entities.RepWorkload, error) {
	weekStart, weekEnd := utils.WeekBounds(reference)

	ids := make([]int, 0, len(reps))
	for _, rep := range reps {
		ids = append(ids, rep.ID)
	}
	rows, err := s.appointments.AppointmentsInRange(ids, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("loading weekly appointments: %w", err)
	}

	type tally struct {
		weekly  int
		daily   int
		minutes int
	}
	tallies := make(map[int]*tally, len(reps))
	for _, rep := range reps {
		tallies[rep.ID] = &tally{}
	}
	for _, apt := range rows {
		if !apt.AssignedTo.Valid {
			continue
		}
		t, ok := tallies[int(apt.AssignedTo.Int64)]
		if !ok {
			continue
		}
		minutes := apt.DurationMinutes
		if minutes == 0 {
			minutes = DefaultAppointmentDuration
		}
		t.weekly++
		t.minutes += minutes
		if utils.SameDate(apt.ScheduledDate, reference) {
			t.daily++
		}
	}

	workloads := make([]entities.RepWorkload, 0, len(reps))
	for _, rep := range reps {
		t := tallies[rep.ID]
		workloads = append(workloads, entities.RepWorkload{
			RepID:                rep.ID,
			FirstName:            rep.FirstName,
			LastName:             rep.LastName,
			Email:                rep.Email,
			AppointmentsThisWeek: t.weekly,
			AppointmentsToday:    t.daily,
			TotalHoursThisWeek:   float64(t.minutes) / 60,
		})
	}
	return workloads, nil
}

// selectBestRep scores each candidate against the candidate-set means and
// returns the highest scorer. Jitter breaks exact ties so repeated
// equal-workload calls do not starve any one rep.
func (s *AssignmentService) selectBestRep(workloads []entities.RepWorkload) entities.RepWorkload {
	if len(workloads) == 1 {
		return workloads[0]
	}

	var sumWeekly, sumDaily, sumHours float64
	for _, w := range workloads {
		sumWeekly += float64(w.AppointmentsThisWeek)
		sumDaily += float64(w.AppointmentsToday)
		sumHours += w.TotalHoursThisWeek
	}
	n := float64(len(workloads))
	meanWeekly := sumWeekly / n
	meanDaily := sumDaily / n
	meanHours := sumHours / n

	best := workloads[0]
	bestScore := math.Inf(-1)
	for _, w := range workloads {
		score := 100.0
		score -= 10 * (float64(w.AppointmentsThisWeek) - meanWeekly)
		score -= 15 * (float64(w.AppointmentsToday) - meanDaily)
		score -= 2 * (w.TotalHoursThisWeek - meanHours)
		score += s.jitter()
		if score > bestScore {
			bestScore = score
			best = w
		}
	}
	return best
}

// GetAvailableRepsWithWorkload returns every active rep annotated with
// availability for the slot plus their workload snapshot. The manual
// override screen uses this to show why auto-assignment picked what it did.
func (s *AssignmentService) GetAvailableRepsWithWorkload(date time.Time, clock string) ([]entities.RepAvailabilityStatus, error) {
	day, err := s.availability.LoadDaySchedule(date)
	if err != nil {
		return nil, err
	}
	workloads, err := s.WorkloadSnapshots(day.Reps, s.now())
	if err != nil {
		return nil, err
	}

	statuses := make([]entities.RepAvailabilityStatus, 0, len(workloads))
	for _, w := range workloads {
		statuses = append(statuses, entities.RepAvailabilityStatus{
			RepWorkload: w,
			Available:   day.IsRepAvailable(w.RepID, clock, DefaultAppointmentDuration),
		})
	}
	return statuses, nil
}

// ReassignAppointments moves a now-unavailable rep's future scheduled and
// confirmed appointments to other reps, earliest appointment first. Each
// appointment re-runs the full assignment against the store state left by
// the previous one, so the scoring sees reassignments as they land.
// Appointments with no candidate stay with the original rep and are
// reported for manual handling.
func (s *AssignmentService) ReassignAppointments(unavailableRepID int, rng *entities.DateRange) entities.ReassignmentResult {
	from := utils.DateOnly(s.now())
	appointments, err := s.appointments.AssignedAppointments(unavailableRepID, from, rng)
	if err != nil {
		log.Printf("Error loading appointments for reassignment from rep %d: %v", unavailableRepID, err)
		return entities.ReassignmentResult{Success: false, Error: msgReassignFailed}
	}
	if len(appointments) == 0 {
		return entities.ReassignmentResult{Success: true, ReassignedCount: 0}
	}

	reassigned := 0
	var failed []int
	for _, apt := range appointments {
		result := s.AssignSalesRep(entities.AssignmentCriteria{
			Date:            apt.ScheduledDate,
			Time:            apt.ScheduledTime,
			DurationMinutes: apt.DurationMinutes,
			AppointmentType: apt.AppointmentType,
			CustomerID:      apt.CustomerID,
		})
		if !result.Success {
			failed = append(failed, apt.ID)
			continue
		}

		note := fmt.Sprintf("Reassigned from unavailable rep to %s", result.AssignedRepName)
		if err := s.appointments.UpdateAssignment(apt.ID, result.AssignedRepID, note); err != nil {
			log.Printf("Error updating appointment %d during reassignment: %v", apt.ID, err)
			failed = append(failed, apt.ID)
			continue
		}
		reassigned++
	}

	return entities.ReassignmentResult{
		Success:            true,
		ReassignedCount:    reassigned,
		FailedAppointments: failed,
	}
}
