package entities

import "time"

// AssignmentCriteria describes the slot an appointment needs a rep for.
type AssignmentCriteria struct {
	Date            time.Time
	Time            string // "HH:MM"
	DurationMinutes int
	AppointmentType string
	CustomerID      int
	PreferredRepID  *int
}

type AssignmentResult struct {
	Success         bool   `json:"success"`
	AssignedRepID   int    `json:"assigned_rep_id,omitempty"`
	AssignedRepName string `json:"assigned_rep_name,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Error           string `json:"error,omitempty"`
}

type ReassignmentResult struct {
	Success            bool   `json:"success"`
	ReassignedCount    int    `json:"reassigned_count"`
	FailedAppointments []int  `json:"failed_appointments,omitempty"`
	Error              string `json:"error,omitempty"`
}

// DateRange bounds a reassignment run; both dates are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
