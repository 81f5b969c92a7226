package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
)

const appointmentColumns = `id, customer_id, assigned_to, scheduled_date, scheduled_time,
	duration_minutes, appointment_type, status, notes, admin_notes, created_at, updated_at`

// AppointmentRepository persists booked appointments.
type AppointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(database *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: database}
}

// ActiveAppointmentsForDate returns every appointment occupying a time slot
// on the given date. Cancelled and no-show appointments are excluded.
func (r *AppointmentRepository) ActiveAppointmentsForDate(date time.Time) ([]db.Appointment, error) {
	rows, err := r.DB.Query(`
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE scheduled_date = $1 AND status NOT IN ($2, $3)
		ORDER BY scheduled_time`, date, db.StatusCancelled, db.StatusNoShow)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments for date: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AppointmentsInRange returns the occupying appointments for a set of reps
// within [start, end], in one batched query.
func (r *AppointmentRepository) AppointmentsInRange(repIDs []int, start, end time.Time) ([]db.Appointment, error) {
	if len(repIDs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(`
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE assigned_to = ANY($1)
		  AND scheduled_date BETWEEN $2 AND $3
		  AND status NOT IN ($4, $5)`,
		pq.Array(repIDs), start, end, db.StatusCancelled, db.StatusNoShow)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments in range: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AssignedAppointments returns a rep's reassignable appointments (scheduled
// or confirmed) from the given date onward, earliest first. When rng is set
// it bounds the dates instead.
func (r *AppointmentRepository) AssignedAppointments(repID int, from time.Time, rng *entities.DateRange) ([]db.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE assigned_to = $1 AND status IN ($2, $3)`
	args := []interface{}{repID, db.StatusScheduled, db.StatusConfirmed}
	if rng != nil {
		query += ` AND scheduled_date BETWEEN $4 AND $5`
		args = append(args, rng.Start, rng.End)
	} else {
		query += ` AND scheduled_date >= $4`
		args = append(args, from)
	}
	query += ` ORDER BY scheduled_date, scheduled_time`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying assigned appointments for rep %d: %w", repID, err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *AppointmentRepository) CreateAppointment(a *db.Appointment) error {
	query := `
		INSERT INTO appointments
		(customer_id, assigned_to, scheduled_date, scheduled_time, duration_minutes,
		 appointment_type, status, notes, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRow(query,
		a.CustomerID, a.AssignedTo, a.ScheduledDate, a.ScheduledTime, a.DurationMinutes,
		a.AppointmentType, a.Status, a.Notes, a.AdminNotes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AppointmentRepository) GetAppointment(id int) (*db.Appointment, error) {
	row := r.DB.QueryRow(`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	var a db.Appointment
	if err := scanAppointment(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying appointment %d: %w", id, err)
	}
	return &a, nil
}

// ListAppointments applies optional equality filters, admin-screen style.
func (r *AppointmentRepository) ListAppointments(date *time.Time, repID int, status string) ([]db.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != nil {
		query += " AND scheduled_date = $" + strconv.Itoa(idx)
		args = append(args, *date)
		idx++
	}
	if repID != 0 {
		query += " AND assigned_to = $" + strconv.Itoa(idx)
		args = append(args, repID)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY scheduled_date, scheduled_time"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// UpdateAssignment moves an appointment to a new rep and appends an audit
// note so the reassignment is traceable.
func (r *AppointmentRepository) UpdateAssignment(id, repID int, adminNote string) error {
	result, err := r.DB.Exec(`
		UPDATE appointments
		SET assigned_to = $1,
		    admin_notes = TRIM(BOTH E' \n' FROM COALESCE(admin_notes, '') || E'\n' || $2),
		    updated_at = NOW()
		WHERE id = $3`, repID, adminNote, id)
	if err != nil {
		return fmt.Errorf("error updating appointment %d assignment: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) UpdateStatus(id int, status string) error {
	result, err := r.DB.Exec(`UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating appointment %d status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reschedule moves an appointment to a new slot and rep in one write.
func (r *AppointmentRepository) Reschedule(id int, date time.Time, clock string, durationMinutes, repID int, adminNote string) error {
	result, err := r.DB.Exec(`
		UPDATE appointments
		SET scheduled_date = $1, scheduled_time = $2, duration_minutes = $3,
		    assigned_to = $4, status = $5,
		    admin_notes = TRIM(BOTH E' \n' FROM COALESCE(admin_notes, '') || E'\n' || $6),
		    updated_at = NOW()
		WHERE id = $7`,
		date, clock, durationMinutes, repID, db.StatusRescheduled, adminNote, id)
	if err != nil {
		return fmt.Errorf("error rescheduling appointment %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAppointment hard-deletes a row. Normal cancellation is a status
// change; this is the administrative escape hatch.
func (r *AppointmentRepository) DeleteAppointment(id int) error {
	result, err := r.DB.Exec(`DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting appointment %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointments(rows *sql.Rows) ([]db.Appointment, error) {
	var appointments []db.Appointment
	for rows.Next() {
		var a db.Appointment
		if err := rows.Scan(
			&a.ID, &a.CustomerID, &a.AssignedTo, &a.ScheduledDate, &a.ScheduledTime,
			&a.DurationMinutes, &a.AppointmentType, &a.Status, &a.Notes, &a.AdminNotes,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func scanAppointment(row *sql.Row, a *db.Appointment) error {
	return row.Scan(
		&a.ID, &a.CustomerID, &a.AssignedTo, &a.ScheduledDate, &a.ScheduledTime,
		&a.DurationMinutes, &a.AppointmentType, &a.Status, &a.Notes, &a.AdminNotes,
		&a.CreatedAt, &a.UpdatedAt,
	)
}
