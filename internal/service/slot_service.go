package service

import (
	"time"

	"floorcrm/internal/entities"
	"floorcrm/internal/utils"
)

// DefaultSlotGranularity is the booking-grid step in minutes.
const DefaultSlotGranularity = 30

// SlotService enumerates the bookable time slots of a day.
type SlotService struct {
	availability *AvailabilityService
}

func NewSlotService(availability *AvailabilityService) *SlotService {
	return &SlotService{availability: availability}
}

// GetDaySlots walks the day from the earliest weekly-window start to the
// latest window end in granularity-sized steps, counting the reps available
// at each step. Steps where nobody is available are dropped. A day with no
// windows (or no active reps) yields an empty slice.
func (s *SlotService) GetDaySlots(date time.Time, granularityMinutes int) ([]entities.TimeSlot, error) {
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultSlotGranularity
	}

	day, err := s.availability.LoadDaySchedule(date)
	if err != nil {
		return nil, err
	}

	slots := []entities.TimeSlot{}
	start, end, ok := day.WindowBounds()
	if !ok {
		return slots, nil
	}

	total := len(day.Reps)
	for clock := start; clock < end; clock = utils.AddMinutesToClock(clock, granularityMinutes) {
		available := day.CountAvailable(clock, granularityMinutes)
		if available > 0 {
			slots = append(slots, entities.TimeSlot{
				Time:          clock,
				AvailableReps: available,
				TotalReps:     total,
			})
		}
	}
	return slots, nil
}
