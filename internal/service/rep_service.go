package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
	"floorcrm/internal/utils"
)

var validTimeOffStatuses = map[string]bool{
	db.TimeOffPending:  true,
	db.TimeOffApproved: true,
	db.TimeOffRejected: true,
}

// RepSchedule bundles everything an admin sees about one rep's calendar
// configuration.
type RepSchedule struct {
	Availability []db.WeeklyAvailability `json:"availability"`
	BlockedTimes []db.BlockedTime        `json:"blocked_times"`
	TimeOff      []db.TimeOffRequest     `json:"time_off"`
}

// ScheduleStore is the schedule-store surface the team admin drives:
// roster changes plus per-rep calendar configuration.
type ScheduleStore interface {
	ListReps(activeOnly bool) ([]db.SalesRep, error)
	GetRep(id int) (*db.SalesRep, error)
	CreateRep(rep *db.SalesRep) error
	DeactivateRep(id int) error
	ListWeeklyAvailability(repID int) ([]db.WeeklyAvailability, error)
	CreateWeeklyAvailability(w *db.WeeklyAvailability) error
	DeleteWeeklyAvailability(repID, windowID int) error
	ListBlockedTimes(repID int) ([]db.BlockedTime, error)
	CreateBlockedTime(b *db.BlockedTime) error
	DeleteBlockedTime(repID, blockID int) error
	ListTimeOff(repID int) ([]db.TimeOffRequest, error)
	CreateTimeOff(t *db.TimeOffRequest) error
	GetTimeOff(id int) (*db.TimeOffRequest, error)
	UpdateTimeOffStatus(id int, status, adminNotes string) error
}

// RepService manages the sales team and its availability data. Changes
// that remove availability (deactivation, time-off approval) drive the
// reassignment of affected appointments.
type RepService struct {
	repo       ScheduleStore
	assignment *AssignmentService
}

func NewRepService(repo ScheduleStore, assignment *AssignmentService) *RepService {
	return &RepService{repo: repo, assignment: assignment}
}

func (s *RepService) ListReps(includeInactive bool) ([]db.SalesRep, error) {
	return s.repo.ListReps(!includeInactive)
}

func (s *RepService) GetRep(id int) (*db.SalesRep, error) {
	return s.repo.GetRep(id)
}

func (s *RepService) CreateRep(rep *db.SalesRep) error {
	if rep.FirstName == "" || rep.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	if rep.Email == "" {
		return fmt.Errorf("email is required")
	}
	return s.repo.CreateRep(rep)
}

// DeactivateRep soft-deletes the rep, then reassigns all their future
// appointments. A partial reassignment is not an error: failures are
// surfaced in the result for manual handling.
func (s *RepService) DeactivateRep(id int) (entities.ReassignmentResult, error) {
	if err := s.repo.DeactivateRep(id); err != nil {
		return entities.ReassignmentResult{}, err
	}
	result := s.assignment.ReassignAppointments(id, nil)
	if len(result.FailedAppointments) > 0 {
		log.Printf("Rep %d deactivated: %d appointments reassigned, %d need manual attention: %v",
			id, result.ReassignedCount, len(result.FailedAppointments), result.FailedAppointments)
	}
	return result, nil
}

func (s *RepService) GetRepSchedule(repID int) (*RepSchedule, error) {
	if _, err := s.repo.GetRep(repID); err != nil {
		return nil, err
	}
	availability, err := s.repo.ListWeeklyAvailability(repID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.repo.ListBlockedTimes(repID)
	if err != nil {
		return nil, err
	}
	timeOff, err := s.repo.ListTimeOff(repID)
	if err != nil {
		return nil, err
	}
	return &RepSchedule{Availability: availability, BlockedTimes: blocked, TimeOff: timeOff}, nil
}

func (s *RepService) AddWeeklyAvailability(repID, dayOfWeek int, startTime, endTime string) (*db.WeeklyAvailability, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if !utils.ValidClockTime(startTime) || !utils.ValidClockTime(endTime) {
		return nil, fmt.Errorf("start_time and end_time must be HH:MM")
	}
	if startTime >= endTime {
		return nil, fmt.Errorf("start_time must be before end_time")
	}
	if _, err := s.repo.GetRep(repID); err != nil {
		return nil, err
	}
	window := &db.WeeklyAvailability{
		SalesRepID: repID,
		DayOfWeek:  dayOfWeek,
		StartTime:  startTime,
		EndTime:    endTime,
	}
	if err := s.repo.CreateWeeklyAvailability(window); err != nil {
		return nil, err
	}
	return window, nil
}

func (s *RepService) RemoveWeeklyAvailability(repID, windowID int) error {
	return s.repo.DeleteWeeklyAvailability(repID, windowID)
}

func (s *RepService) AddBlockedTime(repID int, date time.Time, startTime, endTime string, isAllDay bool, reason string) (*db.BlockedTime, error) {
	if !isAllDay {
		if !utils.ValidClockTime(startTime) || !utils.ValidClockTime(endTime) {
			return nil, fmt.Errorf("partial-day blocks need start_time and end_time as HH:MM")
		}
		if startTime >= endTime {
			return nil, fmt.Errorf("start_time must be before end_time")
		}
	}
	if _, err := s.repo.GetRep(repID); err != nil {
		return nil, err
	}
	block := &db.BlockedTime{
		SalesRepID:  repID,
		BlockedDate: utils.DateOnly(date),
		IsAllDay:    isAllDay,
		Reason:      reason,
	}
	if !isAllDay {
		block.StartTime = sql.NullString{String: startTime, Valid: true}
		block.EndTime = sql.NullString{String: endTime, Valid: true}
	}
	if err := s.repo.CreateBlockedTime(block); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *RepService) RemoveBlockedTime(repID, blockID int) error {
	return s.repo.DeleteBlockedTime(repID, blockID)
}

func (s *RepService) RequestTimeOff(repID int, startDate, endDate time.Time) (*db.TimeOffRequest, error) {
	start := utils.DateOnly(startDate)
	end := utils.DateOnly(endDate)
	if end.Before(start) {
		return nil, fmt.Errorf("end_date must not be before start_date")
	}
	if _, err := s.repo.GetRep(repID); err != nil {
		return nil, err
	}
	request := &db.TimeOffRequest{
		SalesRepID: repID,
		StartDate:  start,
		EndDate:    end,
		Status:     db.TimeOffPending,
	}
	if err := s.repo.CreateTimeOff(request); err != nil {
		return nil, err
	}
	return request, nil
}

// ResolveTimeOff sets the status of a time-off request. Approval makes the
// rep unavailable for the range, so the covered appointments are
// immediately reassigned; the reassignment result rides along for the
// admin screen.
func (s *RepService) ResolveTimeOff(id int, status, adminNotes string) (*entities.ReassignmentResult, error) {
	if !validTimeOffStatuses[status] {
		return nil, fmt.Errorf("invalid time off status %q", status)
	}
	request, err := s.repo.GetTimeOff(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTimeOffStatus(id, status, adminNotes); err != nil {
		return nil, err
	}
	if status != db.TimeOffApproved {
		return nil, nil
	}

	result := s.assignment.ReassignAppointments(request.SalesRepID, &entities.DateRange{
		Start: request.StartDate,
		End:   request.EndDate,
	})
	if len(result.FailedAppointments) > 0 {
		log.Printf("Time off %d approved for rep %d: %d appointments reassigned, %d need manual attention: %v",
			id, request.SalesRepID, result.ReassignedCount, len(result.FailedAppointments), result.FailedAppointments)
	}
	return &result, nil
}
