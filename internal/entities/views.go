package entities

import "floorcrm/internal/db"

// View types shape store rows for JSON responses: dates become YYYY-MM-DD
// strings and nullable columns become optional fields.

type RepView struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
}

func NewRepView(rep db.SalesRep) RepView {
	return RepView{
		ID:        rep.ID,
		FirstName: rep.FirstName,
		LastName:  rep.LastName,
		Email:     rep.Email,
		Phone:     rep.Phone,
		IsActive:  rep.IsActive,
	}
}

func NewRepViews(reps []db.SalesRep) []RepView {
	views := make([]RepView, 0, len(reps))
	for _, rep := range reps {
		views = append(views, NewRepView(rep))
	}
	return views
}

type AppointmentView struct {
	ID              int    `json:"id"`
	CustomerID      int    `json:"customer_id"`
	AssignedRepID   *int   `json:"assigned_rep_id,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	AppointmentType string `json:"appointment_type"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	AdminNotes      string `json:"admin_notes,omitempty"`
}

func NewAppointmentView(a db.Appointment) AppointmentView {
	view := AppointmentView{
		ID:              a.ID,
		CustomerID:      a.CustomerID,
		Date:            a.ScheduledDate.Format("2006-01-02"),
		Time:            a.ScheduledTime,
		DurationMinutes: a.DurationMinutes,
		AppointmentType: a.AppointmentType,
		Status:          a.Status,
		Notes:           a.Notes,
		AdminNotes:      a.AdminNotes,
	}
	if a.AssignedTo.Valid {
		repID := int(a.AssignedTo.Int64)
		view.AssignedRepID = &repID
	}
	return view
}

func NewAppointmentViews(appointments []db.Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, NewAppointmentView(a))
	}
	return views
}

type WeeklyAvailabilityView struct {
	ID        int    `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

func NewWeeklyAvailabilityView(w db.WeeklyAvailability) WeeklyAvailabilityView {
	return WeeklyAvailabilityView{
		ID:        w.ID,
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		IsActive:  w.IsActive,
	}
}

func NewWeeklyAvailabilityViews(windows []db.WeeklyAvailability) []WeeklyAvailabilityView {
	views := make([]WeeklyAvailabilityView, 0, len(windows))
	for _, w := range windows {
		views = append(views, NewWeeklyAvailabilityView(w))
	}
	return views
}

type BlockedTimeView struct {
	ID        int     `json:"id"`
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	IsAllDay  bool    `json:"is_all_day"`
	Reason    string  `json:"reason,omitempty"`
}

func NewBlockedTimeView(b db.BlockedTime) BlockedTimeView {
	view := BlockedTimeView{
		ID:       b.ID,
		Date:     b.BlockedDate.Format("2006-01-02"),
		IsAllDay: b.IsAllDay,
		Reason:   b.Reason,
	}
	if b.StartTime.Valid {
		start := b.StartTime.String
		view.StartTime = &start
	}
	if b.EndTime.Valid {
		end := b.EndTime.String
		view.EndTime = &end
	}
	return view
}

func NewBlockedTimeViews(blocked []db.BlockedTime) []BlockedTimeView {
	views := make([]BlockedTimeView, 0, len(blocked))
	for _, b := range blocked {
		views = append(views, NewBlockedTimeView(b))
	}
	return views
}

type TimeOffView struct {
	ID         int    `json:"id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes,omitempty"`
}

func NewTimeOffView(t db.TimeOffRequest) TimeOffView {
	return TimeOffView{
		ID:         t.ID,
		StartDate:  t.StartDate.Format("2006-01-02"),
		EndDate:    t.EndDate.Format("2006-01-02"),
		Status:     t.Status,
		AdminNotes: t.AdminNotes,
	}
}

func NewTimeOffViews(requests []db.TimeOffRequest) []TimeOffView {
	views := make([]TimeOffView, 0, len(requests))
	for _, t := range requests {
		views = append(views, NewTimeOffView(t))
	}
	return views
}

// RepScheduleView is the admin view of one rep's calendar configuration.
type RepScheduleView struct {
	Availability []WeeklyAvailabilityView `json:"availability"`
	BlockedTimes []BlockedTimeView        `json:"blocked_times"`
	TimeOff      []TimeOffView            `json:"time_off"`
}
