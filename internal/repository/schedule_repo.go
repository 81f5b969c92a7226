package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"floorcrm/internal/db"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ScheduleRepository persists sales reps and their availability data:
// weekly windows, blocked times and time-off requests.
type ScheduleRepository struct {
	DB *sql.DB
}

func NewScheduleRepository(database *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{DB: database}
}

func (r *ScheduleRepository) ListReps(activeOnly bool) ([]db.SalesRep, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, is_active, created_at, updated_at
		FROM sales_reps`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying sales reps: %w", err)
	}
	defer rows.Close()

	var reps []db.SalesRep
	for rows.Next() {
		var rep db.SalesRep
		if err := rows.Scan(&rep.ID, &rep.FirstName, &rep.LastName, &rep.Email, &rep.Phone,
			&rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning sales rep: %w", err)
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}

func (r *ScheduleRepository) ListActiveReps() ([]db.SalesRep, error) {
	return r.ListReps(true)
}

func (r *ScheduleRepository) GetRep(id int) (*db.SalesRep, error) {
	var rep db.SalesRep
	err := r.DB.QueryRow(`
		SELECT id, first_name, last_name, email, phone, is_active, created_at, updated_at
		FROM sales_reps WHERE id = $1`, id).
		Scan(&rep.ID, &rep.FirstName, &rep.LastName, &rep.Email, &rep.Phone,
			&rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying sales rep %d: %w", id, err)
	}
	return &rep, nil
}

func (r *ScheduleRepository) CreateRep(rep *db.SalesRep) error {
	query := `
		INSERT INTO sales_reps (first_name, last_name, email, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING id, is_active, created_at, updated_at`
	return r.DB.QueryRow(query, rep.FirstName, rep.LastName, rep.Email, rep.Phone).
		Scan(&rep.ID, &rep.IsActive, &rep.CreatedAt, &rep.UpdatedAt)
}

// DeactivateRep soft-deletes a rep. Future appointments stay assigned until
// the caller runs reassignment.
func (r *ScheduleRepository) DeactivateRep(id int) error {
	result, err := r.DB.Exec(`UPDATE sales_reps SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deactivating sales rep %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveWindowsForDay returns every rep's active weekly windows for one
// day of week, in a single query.
func (r *ScheduleRepository) ActiveWindowsForDay(dayOfWeek int) ([]db.WeeklyAvailability, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, day_of_week, start_time, end_time, is_active
		FROM sales_rep_availability
		WHERE day_of_week = $1 AND is_active = TRUE
		ORDER BY sales_rep_id, start_time`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("error querying weekly availability for day %d: %w", dayOfWeek, err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *ScheduleRepository) ListWeeklyAvailability(repID int) ([]db.WeeklyAvailability, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, day_of_week, start_time, end_time, is_active
		FROM sales_rep_availability
		WHERE sales_rep_id = $1
		ORDER BY day_of_week, start_time`, repID)
	if err != nil {
		return nil, fmt.Errorf("error querying weekly availability for rep %d: %w", repID, err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

func scanWindows(rows *sql.Rows) ([]db.WeeklyAvailability, error) {
	var windows []db.WeeklyAvailability
	for rows.Next() {
		var w db.WeeklyAvailability
		if err := rows.Scan(&w.ID, &w.SalesRepID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning weekly availability: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *ScheduleRepository) CreateWeeklyAvailability(w *db.WeeklyAvailability) error {
	query := `
		INSERT INTO sales_rep_availability (sales_rep_id, day_of_week, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, is_active`
	return r.DB.QueryRow(query, w.SalesRepID, w.DayOfWeek, w.StartTime, w.EndTime).
		Scan(&w.ID, &w.IsActive)
}

func (r *ScheduleRepository) DeleteWeeklyAvailability(repID, windowID int) error {
	result, err := r.DB.Exec(`DELETE FROM sales_rep_availability WHERE id = $1 AND sales_rep_id = $2`, windowID, repID)
	if err != nil {
		return fmt.Errorf("error deleting weekly availability %d: %w", windowID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// BlockedTimesForDate returns every rep's blocked ranges for one date.
func (r *ScheduleRepository) BlockedTimesForDate(date time.Time) ([]db.BlockedTime, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, blocked_date, start_time, end_time, is_all_day, reason
		FROM sales_rep_blocked_times
		WHERE blocked_date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked times: %w", err)
	}
	defer rows.Close()
	return scanBlockedTimes(rows)
}

func (r *ScheduleRepository) ListBlockedTimes(repID int) ([]db.BlockedTime, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, blocked_date, start_time, end_time, is_all_day, reason
		FROM sales_rep_blocked_times
		WHERE sales_rep_id = $1
		ORDER BY blocked_date`, repID)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked times for rep %d: %w", repID, err)
	}
	defer rows.Close()
	return scanBlockedTimes(rows)
}

func scanBlockedTimes(rows *sql.Rows) ([]db.BlockedTime, error) {
	var blocked []db.BlockedTime
	for rows.Next() {
		var b db.BlockedTime
		if err := rows.Scan(&b.ID, &b.SalesRepID, &b.BlockedDate, &b.StartTime, &b.EndTime, &b.IsAllDay, &b.Reason); err != nil {
			return nil, fmt.Errorf("error scanning blocked time: %w", err)
		}
		blocked = append(blocked, b)
	}
	return blocked, rows.Err()
}

func (r *ScheduleRepository) CreateBlockedTime(b *db.BlockedTime) error {
	query := `
		INSERT INTO sales_rep_blocked_times (sales_rep_id, blocked_date, start_time, end_time, is_all_day, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return r.DB.QueryRow(query, b.SalesRepID, b.BlockedDate, b.StartTime, b.EndTime, b.IsAllDay, b.Reason).
		Scan(&b.ID)
}

func (r *ScheduleRepository) DeleteBlockedTime(repID, blockID int) error {
	result, err := r.DB.Exec(`DELETE FROM sales_rep_blocked_times WHERE id = $1 AND sales_rep_id = $2`, blockID, repID)
	if err != nil {
		return fmt.Errorf("error deleting blocked time %d: %w", blockID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApprovedTimeOffForDate returns approved time-off rows whose range covers
// the given date, for every rep. Pending and rejected requests have no
// scheduling effect and are not returned.
func (r *ScheduleRepository) ApprovedTimeOffForDate(date time.Time) ([]db.TimeOffRequest, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, start_date, end_date, status, admin_notes
		FROM sales_rep_time_off
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2`, db.TimeOffApproved, date)
	if err != nil {
		return nil, fmt.Errorf("error querying time off: %w", err)
	}
	defer rows.Close()
	return scanTimeOff(rows)
}

func (r *ScheduleRepository) ListTimeOff(repID int) ([]db.TimeOffRequest, error) {
	rows, err := r.DB.Query(`
		SELECT id, sales_rep_id, start_date, end_date, status, admin_notes
		FROM sales_rep_time_off
		WHERE sales_rep_id = $1
		ORDER BY start_date DESC`, repID)
	if err != nil {
		return nil, fmt.Errorf("error querying time off for rep %d: %w", repID, err)
	}
	defer rows.Close()
	return scanTimeOff(rows)
}

func scanTimeOff(rows *sql.Rows) ([]db.TimeOffRequest, error) {
	var requests []db.TimeOffRequest
	for rows.Next() {
		var t db.TimeOffRequest
		if err := rows.Scan(&t.ID, &t.SalesRepID, &t.StartDate, &t.EndDate, &t.Status, &t.AdminNotes); err != nil {
			return nil, fmt.Errorf("error scanning time off request: %w", err)
		}
		requests = append(requests, t)
	}
	return requests, rows.Err()
}

func (r *ScheduleRepository) CreateTimeOff(t *db.TimeOffRequest) error {
	query := `
		INSERT INTO sales_rep_time_off (sales_rep_id, start_date, end_date, status, admin_notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.DB.QueryRow(query, t.SalesRepID, t.StartDate, t.EndDate, t.Status, t.AdminNotes).
		Scan(&t.ID)
}

func (r *ScheduleRepository) GetTimeOff(id int) (*db.TimeOffRequest, error) {
	var t db.TimeOffRequest
	err := r.DB.QueryRow(`
		SELECT id, sales_rep_id, start_date, end_date, status, admin_notes
		FROM sales_rep_time_off WHERE id = $1`, id).
		Scan(&t.ID, &t.SalesRepID, &t.StartDate, &t.EndDate, &t.Status, &t.AdminNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying time off request %d: %w", id, err)
	}
	return &t, nil
}

func (r *ScheduleRepository) UpdateTimeOffStatus(id int, status, adminNotes string) error {
	result, err := r.DB.Exec(`
		UPDATE sales_rep_time_off SET status = $1, admin_notes = $2 WHERE id = $3`,
		status, adminNotes, id)
	if err != nil {
		return fmt.Errorf("error updating time off request %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
