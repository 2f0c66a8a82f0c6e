// Package schedule evaluates weekly opening hours.
//
// A WeeklySchedule maps a lowercase weekday name to the time ranges the place
// is open that day. Times are "HH:MM" on a 24h clock; a range whose Close is
// not after its Open runs past midnight into the following day. "24:00" is
// accepted as a Close meaning end of day.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OpeningSoonWindow is how far ahead a closed place counts as opening soon.
const OpeningSoonWindow = 60 * time.Minute

const minutesPerDay = 24 * 60

type State string

const (
	StateOpen        State = "open"
	StateOpeningSoon State = "opening_soon"
	StateClosed      State = "closed"
)

type TimeRange struct {
	Open  string `json:"open" yaml:"open" validate:"required,hhmm"`
	Close string `json:"close" yaml:"close" validate:"required,hhmm"`
}

type WeeklySchedule map[string][]TimeRange

// Status is the evaluation of a schedule at one instant.
type Status struct {
	State          State  `json:"state"`
	IsOpen         bool   `json:"is_open"`
	OpeningSoon    bool   `json:"opening_soon"`
	OpensAt        string `json:"opens_at,omitempty"`
	OpensOn        string `json:"opens_on,omitempty"`
	ClosesAt       string `json:"closes_at,omitempty"`
	OpensInMinutes int    `json:"opens_in_minutes,omitempty"`
}

var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayName returns the schedule key for a weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

func parseDay(name string) (time.Weekday, bool) {
	for i, n := range dayNames {
		if n == name {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// span is a range in minutes; overnight spans have close <= open.
type span struct {
	open, close int
}

func (s span) overnight() bool {
	return s.close <= s.open
}

// Normalize lower-cases day keys and drops empty days.
func (w WeeklySchedule) Normalize() WeeklySchedule {
	out := make(WeeklySchedule, len(w))
	for day, ranges := range w {
		if len(ranges) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(day))
		out[key] = append(out[key], ranges...)
	}
	return out
}

// Validate reports unknown days, malformed times and empty ranges.
func (w WeeklySchedule) Validate() error {
	for day, ranges := range w {
		if _, ok := parseDay(day); !ok {
			return fmt.Errorf("unknown day %q", day)
		}
		for _, r := range ranges {
			open, err := parseClock(r.Open)
			if err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			closeAt, err := parseClock(r.Close)
			if err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			if open == minutesPerDay {
				return fmt.Errorf("%s: opening time cannot be 24:00", day)
			}
			if open == closeAt {
				return fmt.Errorf("%s: range %s-%s is empty", day, r.Open, r.Close)
			}
		}
	}
	return nil
}

// spans returns the parsed ranges of a day sorted by opening time.
// Malformed ranges are skipped.
func (w WeeklySchedule) spans(d time.Weekday) []span {
	ranges := w[DayName(d)]
	out := make([]span, 0, len(ranges))
	for _, r := range ranges {
		open, err := parseClock(r.Open)
		if err != nil {
			continue
		}
		closeAt, err := parseClock(r.Close)
		if err != nil || open == closeAt {
			continue
		}
		out = append(out, span{open: open, close: closeAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].open < out[j].open })
	return out
}

// Evaluate computes the status of the schedule at now. now must already be in
// the location the schedule is expressed in.
func Evaluate(w WeeklySchedule, now time.Time) Status {
	today := now.Weekday()
	minute := now.Hour()*60 + now.Minute()

	// An overnight range from yesterday that has not closed yet.
	yesterday := (today + 6) % 7
	for _, s := range w.spans(yesterday) {
		if s.overnight() && minute < s.close {
			return openStatus(s.close)
		}
	}

	for _, s := range w.spans(today) {
		if minute < s.open {
			continue
		}
		if s.overnight() || minute < s.close {
			return openStatus(s.close)
		}
	}

	return closedStatus(w, today, minute)
}

// EvaluateIn converts now into the named IANA zone before evaluating. An
// unknown zone falls back to fallback.
func EvaluateIn(w WeeklySchedule, now time.Time, zone string, fallback *time.Location) Status {
	loc := fallback
	if zone != "" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		}
	}
	if loc != nil {
		now = now.In(loc)
	}
	return Evaluate(w, now)
}

func openStatus(closeAt int) Status {
	return Status{
		State:    StateOpen,
		IsOpen:   true,
		ClosesAt: formatClock(closeAt),
	}
}

// closedStatus looks for the next opening over the coming week.
func closedStatus(w WeeklySchedule, today time.Weekday, minute int) Status {
	for offset := 0; offset <= 7; offset++ {
		day := (today + time.Weekday(offset)) % 7
		for _, s := range w.spans(day) {
			if offset == 0 && s.open <= minute {
				continue
			}
			wait := offset*minutesPerDay + s.open - minute
			st := Status{
				State:          StateClosed,
				OpensAt:        formatClock(s.open),
				OpensOn:        DayName(day),
				OpensInMinutes: wait,
			}
			if time.Duration(wait)*time.Minute <= OpeningSoonWindow {
				st.State = StateOpeningSoon
				st.OpeningSoon = true
			}
			return st
		}
	}
	return Status{State: StateClosed}
}
