// Package terms maps calendar dates onto the fixed academic terms and
// expands recurring lessons into their dates within a term.
package terms

import (
	"time"

	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/utils"
)

type monthDay struct {
	Month time.Month
	Day   int
}

type span struct {
	Name  models.TermName
	Start monthDay
	End   monthDay
}

type table []span

var defaultTable = table{
	{Name: models.SeptChristmas, Start: monthDay{time.September, 1}, End: monthDay{time.December, 20}},
	{Name: models.JanEaster, Start: monthDay{time.January, 6}, End: monthDay{time.April, 10}},
	{Name: models.MayJuly, Start: monthDay{time.May, 1}, End: monthDay{time.July, 31}},
}

// Info is one concrete instance of a term.
type Info struct {
	Term  models.TermName `json:"term"`
	Start time.Time       `json:"start_date"`
	End   time.Time       `json:"end_date"`
}

func (i Info) Contains(d time.Time) bool {
	d = Midnight(d)
	return !d.Before(i.Start) && !d.After(i.End)
}

// Midnight drops the time of day and location, keeping the calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// bounds returns the instance of s ending in endYear. A term whose start
// month comes after its end month began in the previous year.
func (s span) bounds(endYear int) Info {
	startYear := endYear
	if s.Start.Month > s.End.Month {
		startYear--
	}
	return Info{
		Term:  s.Name,
		Start: Date(startYear, s.Start.Month, s.Start.Day),
		End:   Date(endYear, s.End.Month, s.End.Day),
	}
}

// instanceFor returns the earliest instance of s that has not ended by d.
func (s span) instanceFor(d time.Time) Info {
	d = Midnight(d)
	info := s.bounds(d.Year())
	if info.End.Before(d) {
		info = s.bounds(d.Year() + 1)
	}
	return info
}

func (t table) lookup(name models.TermName) (span, bool) {
	for _, s := range t {
		if s.Name == name {
			return s, true
		}
	}
	return span{}, false
}

func (t table) of(d time.Time) (Info, error) {
	var found []Info
	for _, s := range t {
		if info := s.instanceFor(d); info.Contains(d) {
			found = append(found, info)
		}
	}
	if len(found) != 1 {
		return Info{}, utils.OnDate(utils.ErrNotInTermTime, Midnight(d))
	}
	return found[0], nil
}

func (t table) expand(first time.Time, step int, name models.TermName) []time.Time {
	s, ok := t.lookup(name)
	if !ok || step <= 0 {
		return nil
	}
	first = Midnight(first)
	info := s.instanceFor(first)
	if first.Before(info.Start) {
		return nil
	}
	var dates []time.Time
	for d := first; !d.After(info.End); d = d.AddDate(0, 0, step) {
		dates = append(dates, d)
	}
	return dates
}

// Of returns the term containing d, or a NotInTermTime error.
func Of(d time.Time) (Info, error) {
	return defaultTable.of(d)
}

func IsInTerm(d time.Time, name models.TermName) bool {
	info, err := Of(d)
	return err == nil && info.Term == name
}

// Bounds returns the instance of the named term that ends in endYear.
func Bounds(name models.TermName, endYear int) (Info, bool) {
	s, ok := defaultTable.lookup(name)
	if !ok {
		return Info{}, false
	}
	return s.bounds(endYear), true
}

// ExpandOccurrences lists first, first+step, ... up to the end of the term
// instance that first falls in. A first date before that instance starts
// yields nothing.
func ExpandOccurrences(first time.Time, frequency models.Frequency, name models.TermName) []time.Time {
	return defaultTable.expand(first, frequency.StepDays(), name)
}

// ExpandRepeat is ExpandOccurrences for availability windows: a single day
// for RepeatOnce, otherwise every week or fortnight to the end of the term.
func ExpandRepeat(first time.Time, repeat models.Repeat, name models.TermName) []time.Time {
	switch repeat {
	case models.RepeatWeekly:
		return defaultTable.expand(first, 7, name)
	case models.RepeatFortnightly:
		return defaultTable.expand(first, 14, name)
	}
	if !IsInTerm(first, name) {
		return nil
	}
	return []time.Time{Midnight(first)}
}
