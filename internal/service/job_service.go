package service

import (
	"fmt"
	"log"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/repository"
)

// JobService holds the scheduled maintenance tasks run from cron.
type JobService struct {
	repo       *repository.JobRepository
	assignment *AssignmentService
}

func NewJobService(repo *repository.JobRepository, assignment *AssignmentService) *JobService {
	return &JobService{repo: repo, assignment: assignment}
}

// CompletePastAppointments marks scheduled and confirmed appointments whose
// date has passed as completed.
func (s *JobService) CompletePastAppointments() error {
	log.Println("Cron Job: checking for appointments to mark as 'completed'...")

	ids, err := s.repo.GetPastScheduledAppointmentIDs()
	if err != nil {
		return fmt.Errorf("cron job: failed to get past scheduled appointments: %w", err)
	}
	if len(ids) == 0 {
		log.Println("Cron Job: no appointments found past their scheduled date.")
		return nil
	}

	log.Printf("Cron Job: found %d appointments to mark as 'completed'. IDs: %v", len(ids), ids)
	if err := s.repo.UpdateAppointmentStatuses(ids, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron job: failed to update appointment statuses: %w", err)
	}
	return nil
}

// ReassignTimeOffConflicts sweeps for appointments still assigned to reps
// with approved time off covering the appointment date, and reassigns them.
// Appointments with no candidate are left in place and logged for an admin.
func (s *JobService) ReassignTimeOffConflicts() error {
	log.Println("Cron Job: checking for appointments colliding with approved time off...")

	conflicts, err := s.repo.GetTimeOffConflicts()
	if err != nil {
		return fmt.Errorf("cron job: failed to get time off conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		log.Println("Cron Job: no time off conflicts found.")
		return nil
	}

	for _, c := range conflicts {
		result := s.assignment.ReassignAppointments(c.SalesRepID, &entities.DateRange{
			Start: c.StartDate,
			End:   c.EndDate,
		})
		if !result.Success {
			log.Printf("Cron Job: reassignment for rep %d failed: %s", c.SalesRepID, result.Error)
			continue
		}
		log.Printf("Cron Job: rep %d time off sweep reassigned %d appointments, %d need manual attention",
			c.SalesRepID, result.ReassignedCount, len(result.FailedAppointments))
	}
	return nil
}
