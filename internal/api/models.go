package api

// Slots
type SlotsRequest struct {
	Date string `json:"date"`
}

// Booking
type BookAppointmentRequest struct {
	CustomerID      int    `json:"customer_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	AppointmentType string `json:"appointment_type"`
	Notes           string `json:"notes"`
	PreferredRepID  *int   `json:"preferred_rep_id"`
}

// Rep availability lookup
type RepAvailabilityRequest struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type WorkloadRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Rep management
type CreateRepRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type WeeklyAvailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BlockedTimeRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsAllDay  bool   `json:"is_all_day"`
	Reason    string `json:"reason"`
}

type TimeOffRequestBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type TimeOffStatusRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// Appointment management
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type RescheduleRequest struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ReassignRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
