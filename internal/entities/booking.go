package entities

import "time"

// BookingRequest is a validated appointment-intake request. Time may be
// empty, in which case the first open slot of the day is chosen.
type BookingRequest struct {
	CustomerID      int
	Date            time.Time
	Time            string
	DurationMinutes int
	AppointmentType string
	Notes           string
	PreferredRepID  *int
}

type BookingResult struct {
	Success         bool   `json:"success"`
	AppointmentID   int    `json:"appointment_id,omitempty"`
	AssignedRepID   int    `json:"assigned_rep_id,omitempty"`
	AssignedRepName string `json:"assigned_rep_name,omitempty"`
	ScheduledTime   string `json:"scheduled_time,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Error           string `json:"error,omitempty"`
}

// AppointmentNotification carries the contact details the fire-and-forget
// email/SMS senders need after a successful assignment.
type AppointmentNotification struct {
	RepName    string
	RepEmail   string
	RepPhone   string
	CustomerID int
	Date       time.Time
	Time       string
	Duration   int
	Type       string
}
