package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"floorcrm/internal/db"
)

// JobRepository backs the cron jobs with the bulk queries they need.
type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// TimeOffConflict is an approved time-off range that still has reassignable
// appointments booked against it.
type TimeOffConflict struct {
	SalesRepID int
	StartDate  time.Time
	EndDate    time.Time
}

// GetPastScheduledAppointmentIDs returns appointments still marked scheduled
// or confirmed whose date has passed.
func (r *JobRepository) GetPastScheduledAppointmentIDs() ([]int, error) {
	query := `
		SELECT id FROM appointments
		WHERE status IN ($1, $2) AND scheduled_date < CURRENT_DATE`
	rows, err := r.DB.Query(query, db.StatusScheduled, db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("error querying past scheduled appointments: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning appointment ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateAppointmentStatuses sets the status on a batch of appointments.
func (r *JobRepository) UpdateAppointmentStatuses(ids []int, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating appointment statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d appointments to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// GetTimeOffConflicts finds approved time-off ranges that overlap future
// scheduled/confirmed appointments for the same rep.
func (r *JobRepository) GetTimeOffConflicts() ([]TimeOffConflict, error) {
	query := `
		SELECT DISTINCT t.sales_rep_id, t.start_date, t.end_date
		FROM sales_rep_time_off t
		JOIN appointments a
		  ON a.assigned_to = t.sales_rep_id
		 AND a.scheduled_date BETWEEN t.start_date AND t.end_date
		WHERE t.status = $1
		  AND a.status IN ($2, $3)
		  AND a.scheduled_date >= CURRENT_DATE`
	rows, err := r.DB.Query(query, db.TimeOffApproved, db.StatusScheduled, db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("error querying time off conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []TimeOffConflict
	for rows.Next() {
		var c TimeOffConflict
		if err := rows.Scan(&c.SalesRepID, &c.StartDate, &c.EndDate); err != nil {
			return nil, fmt.Errorf("error scanning time off conflict: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}
