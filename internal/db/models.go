package db

import (
	"database/sql"
	"time"
)

// Appointment statuses. Cancelled and no-show appointments release their
// time slot; every other status occupies [start, start+duration) for the
// assigned rep.
const (
	StatusScheduled   = "scheduled"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusNoShow      = "no-show"
	StatusRescheduled = "rescheduled"
)

// Time-off request statuses. Only approved requests remove a rep from
// candidacy for the covered date range.
const (
	TimeOffPending  = "pending"
	TimeOffApproved = "approved"
	TimeOffRejected = "rejected"
)

type SalesRep struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r SalesRep) FullName() string {
	return r.FirstName + " " + r.LastName
}

// WeeklyAvailability is one recurring bookable window. A rep may have
// several rows for the same day (split shifts); each is checked on its own.
type WeeklyAvailability struct {
	ID         int
	SalesRepID int
	DayOfWeek  int // 0=Sunday .. 6=Saturday
	StartTime  string
	EndTime    string
	IsActive   bool
}

// BlockedTime removes availability for part or all of one date. When
// IsAllDay is false both StartTime and EndTime are set.
type BlockedTime struct {
	ID          int
	SalesRepID  int
	BlockedDate time.Time
	StartTime   sql.NullString
	EndTime     sql.NullString
	IsAllDay    bool
	Reason      string
}

type TimeOffRequest struct {
	ID         int
	SalesRepID int
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	AdminNotes string
}

type Appointment struct {
	ID              int
	CustomerID      int
	AssignedTo      sql.NullInt64
	ScheduledDate   time.Time
	ScheduledTime   string
	DurationMinutes int
	AppointmentType string
	Status          string
	Notes           string
	AdminNotes      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Occupies reports whether this appointment holds its time slot against
// further bookings for the assigned rep.
func (a Appointment) Occupies() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}
