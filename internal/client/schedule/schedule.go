// Package schedule generates work schedules: a total number of hours spread
// over the working days of a date range.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoWorkingDays    = errors.New("no working days in range")
	ErrCapacityExceeded = errors.New("hours exceed daily capacity of the range")
	ErrInvalidRequest   = errors.New("invalid schedule request")
)

const (
	DefaultMaxPerDay = 8 * time.Hour
	DefaultDayStart  = 8 * time.Hour
	DefaultSlot      = 30 * time.Minute
)

// DefaultWeekdays is Monday to Friday.
var DefaultWeekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

type Request struct {
	// From and To are inclusive; only their dates matter.
	From, To time.Time
	Total    time.Duration

	Weekdays  []time.Weekday
	Exclude   []time.Time
	MaxPerDay time.Duration
	// DayStart is the offset from midnight at which every shift begins.
	DayStart time.Duration
	Slot     time.Duration
}

type Shift struct {
	Start time.Time
	End   time.Time
}

func (s Shift) Duration() time.Duration { return s.End.Sub(s.Start) }

// MarshalJSON renders the wire form used by the work-schedules endpoint.
func (s Shift) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Start string  `json:"start"`
		End   string  `json:"end"`
		Hours float64 `json:"hours"`
	}{
		Date:  s.Start.Format(time.DateOnly),
		Start: s.Start.Format("15:04"),
		End:   s.End.Format("15:04"),
		Hours: s.Duration().Hours(),
	})
}

func (r Request) withDefaults() Request {
	if len(r.Weekdays) == 0 {
		r.Weekdays = DefaultWeekdays
	}
	if r.MaxPerDay == 0 {
		r.MaxPerDay = DefaultMaxPerDay
	}
	if r.DayStart == 0 {
		r.DayStart = DefaultDayStart
	}
	if r.Slot == 0 {
		r.Slot = DefaultSlot
	}
	return r
}

func (r Request) validate() error {
	switch {
	case r.Total <= 0:
		return fmt.Errorf("%w: total must be positive", ErrInvalidRequest)
	case r.Slot <= 0:
		return fmt.Errorf("%w: slot must be positive", ErrInvalidRequest)
	case r.Total%r.Slot != 0:
		return fmt.Errorf("%w: total %s is not a multiple of %s", ErrInvalidRequest, r.Total, r.Slot)
	case r.MaxPerDay < r.Slot:
		return fmt.Errorf("%w: daily cap below one slot", ErrInvalidRequest)
	case r.DayStart < 0 || r.DayStart+r.MaxPerDay > 24*time.Hour:
		return fmt.Errorf("%w: shift would cross midnight", ErrInvalidRequest)
	case dateOf(r.To).Before(dateOf(r.From)):
		return fmt.Errorf("%w: range ends before it starts", ErrInvalidRequest)
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WorkingDays lists the dates of the range that fall on an allowed weekday
// and are not excluded.
func (r Request) WorkingDays() []time.Time {
	r = r.withDefaults()

	allowed := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, wd := range r.Weekdays {
		allowed[wd] = true
	}
	excluded := make(map[string]bool, len(r.Exclude))
	for _, d := range r.Exclude {
		excluded[d.Format(time.DateOnly)] = true
	}

	var days []time.Time
	end := dateOf(r.To)
	for d := dateOf(r.From); !d.After(end); d = d.AddDate(0, 0, 1) {
		if allowed[d.Weekday()] && !excluded[d.Format(time.DateOnly)] {
			days = append(days, d)
		}
	}
	return days
}

// Generate spreads r.Total over the working days as evenly as the slot
// granularity allows. Leftover slots go to the earliest days. Days that
// receive nothing get no shift.
func Generate(r Request) ([]Shift, error) {
	r = r.withDefaults()
	if err := r.validate(); err != nil {
		return nil, err
	}

	days := r.WorkingDays()
	if len(days) == 0 {
		return nil, ErrNoWorkingDays
	}

	slots := int(r.Total / r.Slot)
	perDay := int(r.MaxPerDay / r.Slot)
	if slots > perDay*len(days) {
		return nil, fmt.Errorf("%w: %s over %d days, at most %s per day",
			ErrCapacityExceeded, r.Total, len(days), r.MaxPerDay)
	}

	base, rem := slots/len(days), slots%len(days)
	shifts := make([]Shift, 0, len(days))
	for i, day := range days {
		n := base
		if i < rem {
			n++
		}
		if n == 0 {
			continue
		}
		start := day.Add(r.DayStart)
		shifts = append(shifts, Shift{Start: start, End: start.Add(time.Duration(n) * r.Slot)})
	}
	return shifts, nil
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidRequest, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
