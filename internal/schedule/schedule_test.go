package schedule

import (
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-12 is a Monday.
func at(day int, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 10, day, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

var weekdayLunch = WeeklySchedule{
	"monday":    {{Open: "11:00", Close: "15:00"}, {Open: "18:00", Close: "22:00"}},
	"tuesday":   {{Open: "11:00", Close: "15:00"}},
	"friday":    {{Open: "18:00", Close: "02:00"}},
	"saturday":  {{Open: "00:30", Close: "03:00"}},
	"sunday":    {{Open: "10:00", Close: "24:00"}},
	"wednesday": {},
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{
			name: "inside first range",
			now:  at(12, "12:00"),
			want: Status{State: StateOpen, IsOpen: true, ClosesAt: "15:00"},
		},
		{
			name: "exactly at opening is open",
			now:  at(12, "18:00"),
			want: Status{State: StateOpen, IsOpen: true, ClosesAt: "22:00"},
		},
		{
			name: "exactly at closing is closed",
			now:  at(12, "15:00"),
			want: Status{State: StateClosed, OpensAt: "18:00", OpensOn: "monday", OpensInMinutes: 180},
		},
		{
			name: "opening within the hour",
			now:  at(12, "17:15"),
			want: Status{State: StateOpeningSoon, OpeningSoon: true, OpensAt: "18:00", OpensOn: "monday", OpensInMinutes: 45},
		},
		{
			name: "opening in exactly sixty minutes",
			now:  at(12, "10:00"),
			want: Status{State: StateOpeningSoon, OpeningSoon: true, OpensAt: "11:00", OpensOn: "monday", OpensInMinutes: 60},
		},
		{
			name: "sixty one minutes is closed",
			now:  at(12, "09:59"),
			want: Status{State: StateClosed, OpensAt: "11:00", OpensOn: "monday", OpensInMinutes: 61},
		},
		{
			name: "after last range opens next day",
			now:  at(12, "23:00"),
			want: Status{State: StateClosed, OpensAt: "11:00", OpensOn: "tuesday", OpensInMinutes: 720},
		},
		{
			name: "overnight range before midnight",
			now:  at(16, "23:30"),
			want: Status{State: StateOpen, IsOpen: true, ClosesAt: "02:00"},
		},
		{
			name: "overnight range after midnight",
			now:  at(17, "00:15"),
			want: Status{State: StateOpen, IsOpen: true, ClosesAt: "02:00"},
		},
		{
			name: "opening soon same evening",
			now:  at(16, "17:30"),
			want: Status{State: StateOpeningSoon, OpeningSoon: true, OpensAt: "18:00", OpensOn: "friday", OpensInMinutes: 30},
		},
		{
			name: "next opening tomorrow evening",
			now:  at(15, "23:40"),
			want: Status{State: StateClosed, OpensAt: "18:00", OpensOn: "friday", OpensInMinutes: 1100},
		},
		{
			name: "end of day close",
			now:  at(18, "23:59"),
			want: Status{State: StateOpen, IsOpen: true, ClosesAt: "00:00"},
		},
		{
			name: "closed all of wednesday",
			now:  at(14, "12:00"),
			want: Status{State: StateClosed, OpensAt: "18:00", OpensOn: "friday", OpensInMinutes: 3240},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(weekdayLunch, tt.now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateOpeningSoonAcrossMidnight(t *testing.T) {
	w := WeeklySchedule{"saturday": {{Open: "00:30", Close: "03:00"}}}

	got := Evaluate(w, at(16, "23:50"))

	assert.Equal(t, StateOpeningSoon, got.State)
	assert.Equal(t, "saturday", got.OpensOn)
	assert.Equal(t, 40, got.OpensInMinutes)
}

func TestEvaluateEmptySchedule(t *testing.T) {
	got := Evaluate(WeeklySchedule{}, at(12, "12:00"))
	assert.Equal(t, Status{State: StateClosed}, got)
}

func TestEvaluateIn(t *testing.T) {
	w := WeeklySchedule{"monday": {{Open: "09:00", Close: "17:00"}}}
	// 08:30 UTC is 10:30 in Paris (CEST, UTC+2) on 2026-10-12.
	now := at(12, "08:30")

	got := EvaluateIn(w, now, "Europe/Paris", time.UTC)
	assert.True(t, got.IsOpen)

	got = EvaluateIn(w, now, "Not/AZone", time.UTC)
	assert.False(t, got.IsOpen)
	assert.True(t, got.OpeningSoon)
}

func TestValidate(t *testing.T) {
	valid := WeeklySchedule{"Monday ": {{Open: "09:00", Close: "24:00"}}}.Normalize()
	require.NoError(t, valid.Validate())

	tests := map[string]WeeklySchedule{
		"unknown day": {"funday": {{Open: "09:00", Close: "10:00"}}},
		"bad open":    {"monday": {{Open: "9:00", Close: "10:00"}}},
		"bad minutes": {"monday": {{Open: "09:60", Close: "10:00"}}},
		"empty range": {"monday": {{Open: "09:00", Close: "09:00"}}},
		"open at 24h": {"monday": {{Open: "24:00", Close: "02:00"}}},
		"after 24:00": {"monday": {{Open: "09:00", Close: "24:30"}}},
	}
	for name, w := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, w.Validate())
		})
	}
}

func TestNormalizeDropsEmptyDays(t *testing.T) {
	got := WeeklySchedule{"TUESDAY": {{Open: "08:00", Close: "12:00"}}, "monday": nil}.Normalize()
	want := WeeklySchedule{"tuesday": {{Open: "08:00", Close: "12:00"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}
