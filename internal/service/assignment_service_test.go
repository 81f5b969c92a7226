package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorcrm/internal/db"
	"floorcrm/internal/entities"
)

// newTestAssignment pins the clock to the fixture Monday and zeroes the
// jitter so scoring is deterministic.
func newTestAssignment(store *fakeStore) *AssignmentService {
	availability := NewAvailabilityService(store, store)
	return NewAssignmentService(availability, store).
		WithClock(func() time.Time { return monday }).
		WithJitter(func() float64 { return 0 })
}

func teamOfTwo() *fakeStore {
	return &fakeStore{
		reps: []db.SalesRep{activeRep(1, "Dana", "Reyes"), activeRep(2, "Miguel", "Ortiz")},
		windows: []db.WeeklyAvailability{
			window(1, 1, "09:00", "17:00"),
			window(2, 1, "09:00", "17:00"),
		},
		nextID: 100,
	}
}

func TestAssignSalesRep_PrefersLowerWorkload(t *testing.T) {
	store := teamOfTwo()
	// Dana already has two appointments this week, Miguel has none.
	store.appts = []db.Appointment{
		appointment(1, 1, monday, "09:00", 60, db.StatusScheduled),
		appointment(2, 1, monday.AddDate(0, 0, 2), "10:00", 60, db.StatusConfirmed),
	}
	svc := newTestAssignment(store)

	result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday, Time: "14:00", DurationMinutes: 60})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.AssignedRepID)
	assert.Equal(t, "Miguel Ortiz", result.AssignedRepName)
	assert.Equal(t, "Auto-assigned based on availability and workload balance", result.Reason)
}

func TestAssignSalesRep_TodayCountWeighsMoreThanWeekly(t *testing.T) {
	store := teamOfTwo()
	// Dana: one appointment, but it is today. Miguel: two appointments on
	// other days. The per-day weight outranks the weekly one, so Miguel
	// still wins.
	store.appts = []db.Appointment{
		appointment(1, 1, monday, "09:00", 60, db.StatusScheduled),
		appointment(2, 2, monday.AddDate(0, 0, 1), "09:00", 60, db.StatusScheduled),
		appointment(3, 2, monday.AddDate(0, 0, 2), "09:00", 60, db.StatusScheduled),
	}
	svc := newTestAssignment(store)

	result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday, Time: "14:00", DurationMinutes: 60})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.AssignedRepID)
}

func TestAssignSalesRep_PreferredRepBypassesScoring(t *testing.T) {
	store := teamOfTwo()
	// Dana is far busier, but the customer asked for her.
	store.appts = []db.Appointment{
		appointment(1, 1, monday, "09:00", 60, db.StatusScheduled),
		appointment(2, 1, monday.AddDate(0, 0, 1), "09:00", 60, db.StatusScheduled),
		appointment(3, 1, monday.AddDate(0, 0, 2), "09:00", 60, db.StatusScheduled),
	}
	preferred := 1
	svc := newTestAssignment(store)

	result := svc.AssignSalesRep(entities.AssignmentCriteria{
		Date: monday, Time: "14:00", DurationMinutes: 60, PreferredRepID: &preferred,
	})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.AssignedRepID)
	assert.Equal(t, "Preferred sales representative assigned", result.Reason)
}

func TestAssignSalesRep_UnavailablePreferredFallsBack(t *testing.T) {
	store := teamOfTwo()
	store.blocked = []db.BlockedTime{{SalesRepID: 1, BlockedDate: monday, IsAllDay: true}}
	preferred := 1
	svc := newTestAssignment(store)

	result := svc.AssignSalesRep(entities.AssignmentCriteria{
		Date: monday, Time: "14:00", DurationMinutes: 60, PreferredRepID: &preferred,
	})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.AssignedRepID)
	assert.Equal(t, "Auto-assigned based on availability and workload balance", result.Reason)
}

func TestAssignSalesRep_JitterOnlyBreaksTies(t *testing.T) {
	t.Run("TieBrokenByJitter", func(t *testing.T) {
		// Identical workloads; a fixed jitter sequence decides the tie.
		store := teamOfTwo()
		availability := NewAvailabilityService(store, store)
		draws := []float64{1.0, 4.0}
		i := 0
		svc := NewAssignmentService(availability, store).
			WithClock(func() time.Time { return monday }).
			WithJitter(func() float64 { d := draws[i%len(draws)]; i++; return d })

		result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday, Time: "14:00", DurationMinutes: 60})
		require.True(t, result.Success)
		assert.Equal(t, 2, result.AssignedRepID)
	})

	t.Run("RealWorkloadGapNeverFlips", func(t *testing.T) {
		// Jitter is bounded by 5 points; a two-appointment weekly gap is
		// worth well over that, so the busier rep can never win the draw.
		store := teamOfTwo()
		store.appts = []db.Appointment{
			appointment(1, 1, monday.AddDate(0, 0, 1), "09:00", 60, db.StatusScheduled),
			appointment(2, 1, monday.AddDate(0, 0, 2), "09:00", 60, db.StatusScheduled),
		}
		availability := NewAvailabilityService(store, store)
		rng := rand.New(rand.NewSource(42))
		svc := NewAssignmentService(availability, store).
			WithClock(func() time.Time { return monday }).
			WithJitter(func() float64 { return rng.Float64() * 5 })

		for i := 0; i < 20; i++ {
			result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday, Time: "14:00", DurationMinutes: 60})
			require.True(t, result.Success)
			assert.Equal(t, 2, result.AssignedRepID)
		}
	})
}

func TestAssignSalesRep_NoCandidates(t *testing.T) {
	store := teamOfTwo()
	svc := newTestAssignment(store)

	// Tuesday has no weekly windows at all.
	result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday.AddDate(0, 0, 1), Time: "14:00", DurationMinutes: 60})
	assert.False(t, result.Success)
	assert.Equal(t, "No sales representatives are available at the requested time", result.Error)
}

func TestAssignSalesRep_ZeroDurationDefaultsToOneHour(t *testing.T) {
	store := &fakeStore{
		reps:    []db.SalesRep{activeRep(1, "Dana", "Reyes")},
		windows: []db.WeeklyAvailability{window(1, 1, "09:00", "17:00")},
		appts:   []db.Appointment{appointment(1, 1, monday, "14:30", 60, db.StatusScheduled)},
	}
	svc := newTestAssignment(store)

	// With the default 60-minute duration the 14:00 request overlaps the
	// 14:30 appointment.
	result := svc.AssignSalesRep(entities.AssignmentCriteria{Date: monday, Time: "14:00"})
	assert.False(t, result.Success)
}

func TestWorkloadSnapshots(t *testing.T) {
	store := teamOfTwo()
	// One 90-minute appointment today, one later in the week with an unknown
	// duration (counted as an hour), one next week (out of range) and one
	// cancelled (released slot).
	store.appts = []db.Appointment{
		appointment(1, 1, monday, "09:00", 90, db.StatusScheduled),
		appointment(2, 1, monday.AddDate(0, 0, 3), "10:00", 0, db.StatusScheduled),
		appointment(3, 1, monday.AddDate(0, 0, 10), "10:00", 60, db.StatusScheduled),
		appointment(4, 1, monday, "11:00", 60, db.StatusCancelled),
	}
	svc := newTestAssignment(store)

	reps, err := store.ListActiveReps()
	require.NoError(t, err)
	workloads, err := svc.WorkloadSnapshots(reps, monday)
	require.NoError(t, err)
	require.Len(t, workloads, 2)

	dana := workloads[0]
	assert.Equal(t, 1, dana.RepID)
	assert.Equal(t, 2, dana.AppointmentsThisWeek)
	assert.Equal(t, 1, dana.AppointmentsToday)
	assert.InDelta(t, 2.5, dana.TotalHoursThisWeek, 0.001)

	// A rep with no appointments gets a zero snapshot, not an omission.
	miguel := workloads[1]
	assert.Equal(t, 2, miguel.RepID)
	assert.Equal(t, 0, miguel.AppointmentsThisWeek)
	assert.Equal(t, 0, miguel.AppointmentsToday)
	assert.Zero(t, miguel.TotalHoursThisWeek)
}

func TestGetAvailableRepsWithWorkload(t *testing.T) {
	store := teamOfTwo()
	store.blocked = []db.BlockedTime{{SalesRepID: 2, BlockedDate: monday, IsAllDay: true}}
	store.appts = []db.Appointment{appointment(1, 1, monday, "09:00", 60, db.StatusScheduled)}
	svc := newTestAssignment(store)

	statuses, err := svc.GetAvailableRepsWithWorkload(monday, "14:00")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, 1, statuses[0].RepID)
	assert.True(t, statuses[0].Available)
	assert.Equal(t, 1, statuses[0].AppointmentsThisWeek)

	assert.Equal(t, 2, statuses[1].RepID)
	assert.False(t, statuses[1].Available)
}

func TestReassignAppointments_NoAppointmentsIsANoOp(t *testing.T) {
	store := teamOfTwo()
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, nil)
	assert.True(t, result.Success)
	assert.Zero(t, result.ReassignedCount)
	assert.Empty(t, result.FailedAppointments)
}

func TestReassignAppointments_SpreadsAcrossTheTeam(t *testing.T) {
	store := &fakeStore{
		reps: []db.SalesRep{
			activeRep(1, "Dana", "Reyes"),
			activeRep(2, "Miguel", "Ortiz"),
			activeRep(3, "Priya", "Shah"),
		},
		windows: []db.WeeklyAvailability{
			window(1, 1, "09:00", "17:00"),
			window(2, 1, "09:00", "17:00"),
			window(3, 1, "09:00", "17:00"),
		},
		appts: []db.Appointment{
			appointment(1, 1, monday, "10:00", 60, db.StatusScheduled),
			appointment(2, 1, monday, "13:00", 60, db.StatusConfirmed),
		},
	}
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, nil)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.ReassignedCount)
	assert.Empty(t, result.FailedAppointments)

	// Each appointment re-runs assignment against the state left by the
	// previous one, so the two land on different reps instead of piling
	// onto the first candidate.
	got := map[int]int{}
	for _, a := range store.appts {
		require.True(t, a.AssignedTo.Valid)
		repID := int(a.AssignedTo.Int64)
		assert.NotEqual(t, 1, repID)
		got[repID]++
		assert.Contains(t, a.AdminNotes, "Reassigned from unavailable rep to")
	}
	assert.Equal(t, map[int]int{2: 1, 3: 1}, got)
}

func TestReassignAppointments_ReportsUnplaceable(t *testing.T) {
	store := teamOfTwo()
	store.blocked = []db.BlockedTime{{SalesRepID: 2, BlockedDate: monday, IsAllDay: true}}
	store.appts = []db.Appointment{appointment(7, 1, monday, "10:00", 60, db.StatusScheduled)}
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, nil)
	require.True(t, result.Success)
	assert.Zero(t, result.ReassignedCount)
	assert.Equal(t, []int{7}, result.FailedAppointments)

	// The appointment stays with the original rep for manual handling.
	assert.Equal(t, int64(1), store.appts[0].AssignedTo.Int64)
}

func TestReassignAppointments_HonorsDateRange(t *testing.T) {
	nextMonday := monday.AddDate(0, 0, 7)
	store := teamOfTwo()
	store.appts = []db.Appointment{
		appointment(1, 1, monday, "10:00", 60, db.StatusScheduled),
		appointment(2, 1, nextMonday, "10:00", 60, db.StatusScheduled),
	}
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, &entities.DateRange{Start: monday, End: monday})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.ReassignedCount)

	assert.Equal(t, int64(2), store.appts[0].AssignedTo.Int64)
	assert.Equal(t, int64(1), store.appts[1].AssignedTo.Int64)
}

func TestReassignAppointments_RangeReachesBackBeforeToday(t *testing.T) {
	// An explicit range replaces the from-today bound, so a sweep for an
	// already-started time-off period still picks up earlier dates.
	lastMonday := monday.AddDate(0, 0, -7)
	store := teamOfTwo()
	store.appts = []db.Appointment{
		appointment(1, 1, lastMonday, "10:00", 60, db.StatusScheduled),
	}
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, &entities.DateRange{Start: lastMonday, End: monday})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.ReassignedCount)
	assert.Equal(t, int64(2), store.appts[0].AssignedTo.Int64)
}

func TestReassignAppointments_SkipsPastAndSettledAppointments(t *testing.T) {
	store := teamOfTwo()
	store.appts = []db.Appointment{
		appointment(1, 1, monday.AddDate(0, 0, -7), "10:00", 60, db.StatusScheduled),
		appointment(2, 1, monday, "10:00", 60, db.StatusCompleted),
		appointment(3, 1, monday, "13:00", 60, db.StatusCancelled),
	}
	svc := newTestAssignment(store)

	result := svc.ReassignAppointments(1, nil)
	require.True(t, result.Success)
	assert.Zero(t, result.ReassignedCount)
	for _, a := range store.appts {
		assert.Equal(t, int64(1), a.AssignedTo.Int64)
	}
}
