package entities

// RepWorkload is the per-rep load snapshot used by the assignment scoring.
// It is recomputed for every decision, never cached across requests.
type RepWorkload struct {
	RepID                int     `json:"rep_id"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
	Email                string  `json:"email"`
	AppointmentsThisWeek int     `json:"appointments_this_week"`
	AppointmentsToday    int     `json:"appointments_today"`
	TotalHoursThisWeek   float64 `json:"total_hours_this_week"`
}

// RepAvailabilityStatus annotates a workload snapshot with availability for
// a concrete slot. The manual-override screen uses this to show why the
// auto-assignment picked what it picked.
type RepAvailabilityStatus struct {
	RepWorkload
	Available bool `json:"available"`
}
