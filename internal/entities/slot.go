package entities

// TimeSlot is one bookable step of a day. AvailableReps counts the reps
// free at that time; TotalReps is the active team size, so clients can show
// how saturated the slot is.
type TimeSlot struct {
	Time          string `json:"time"`
	AvailableReps int    `json:"available_reps"`
	TotalReps     int    `json:"total_reps"`
}
