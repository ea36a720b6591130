package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
)

// Longest span Next looks ahead before giving up. Any valid spec matches at
// least once a day, the extra days cover DST gaps.
const searchHorizon = 8 * 24 * time.Hour

var (
	ErrNoTimes     = errors.New("schedule has no trigger times")
	ErrInvalidTime = errors.New("schedule trigger time is out of range")
)

// Time is a wall-clock trigger point within a day.
type Time struct {
	Hour   int `mapstructure:"hour"`
	Minute int `mapstructure:"minute"`
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t Time) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t Time) key() int {
	return t.Hour*60 + t.Minute
}

// Spec fires at the start of every minute whose local hour and minute
// match one of its times.
type Spec struct {
	times []Time
	set   map[int]struct{}
}

func New(times ...Time) (*Spec, error) {
	if len(times) == 0 {
		return nil, ErrNoTimes
	}

	set := make(map[int]struct{}, len(times))
	unique := make([]Time, 0, len(times))

	for _, t := range times {
		if !t.valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTime, t)
		}

		if _, ok := set[t.key()]; ok {
			continue
		}

		set[t.key()] = struct{}{}
		unique = append(unique, t)
	}

	sort.Slice(unique, func(i, j int) bool { return unique[i].key() < unique[j].key() })

	return &Spec{times: unique, set: set}, nil
}

// Daily is the default schedule: once a day at local midnight.
func Daily() *Spec {
	s, _ := New(Time{Hour: 0, Minute: 0})
	return s
}

func (s *Spec) Times() []Time {
	result := make([]Time, len(s.times))
	copy(result, s.times)

	return result
}

// Next returns the first minute boundary strictly after t whose wall-clock
// hour and minute (in t's location) are part of the spec. Walking minute by
// minute over absolute time makes DST gaps and repeated hours fall out
// naturally. Zero time is returned when nothing matches, as cron expects.
func (s *Spec) Next(t time.Time) time.Time {
	t = t.Round(0)

	next := t.Add(time.Minute -
		time.Duration(t.Second())*time.Second -
		time.Duration(t.Nanosecond()))

	for end := t.Add(searchHorizon); !next.After(end); next = next.Add(time.Minute) {
		if _, ok := s.set[next.Hour()*60+next.Minute()]; ok {
			return next
		}
	}

	return time.Time{}
}

func (s *Spec) String() string {
	result := ""

	for i, t := range s.times {
		if i > 0 {
			result += ","
		}
		result += t.String()
	}

	return result
}

var _ cron.Schedule = (*Spec)(nil)
