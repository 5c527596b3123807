package models

type Frequency string

const (
	Weekly      Frequency = "once a week"
	Fortnightly Frequency = "once per fortnight"
)

func (f Frequency) Valid() bool {
	return f == Weekly || f == Fortnightly
}

// StepDays is the gap between two occurrences.
func (f Frequency) StepDays() int {
	if f == Fortnightly {
		return 14
	}
	return 7
}

type TermName string

const (
	SeptChristmas TermName = "sept-christmas"
	JanEaster     TermName = "jan-easter"
	MayJuly       TermName = "may-july"
)

func (t TermName) Valid() bool {
	switch t {
	case SeptChristmas, JanEaster, MayJuly:
		return true
	}
	return false
}

// Repeat controls how many availability windows one add request creates.
type Repeat string

const (
	RepeatOnce        Repeat = "once"
	RepeatWeekly      Repeat = "weekly"
	RepeatFortnightly Repeat = "fortnightly"
)

func (r Repeat) Valid() bool {
	switch r {
	case RepeatOnce, RepeatWeekly, RepeatFortnightly:
		return true
	}
	return false
}

type WindowStatus string

const (
	Available    WindowStatus = "available"
	NotAvailable WindowStatus = "not_available"
)

func (s WindowStatus) Valid() bool {
	return s == Available || s == NotAvailable
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAllocated RequestStatus = "allocated"
	RequestDenied    RequestStatus = "denied"
)
