package validate

import (
	"errors"
	"time"
)

const (
	minAge = 13
	maxAge = 120
)

var (
	ErrDOBRequired = errors.New("date of birth is required")
	ErrDOBInvalid  = errors.New("invalid date")
	ErrDOBUnderage = errors.New("you must be at least 13 years old")
	ErrDOBTooOld   = errors.New("please enter a valid date of birth")
)

// Dob validates a YYYY-MM-DD date of birth string against today's date.
func Dob(value string) error {
	return DobAt(value, time.Now())
}

// DobAt is Dob with an explicit reference date. Age is whole years, adjusted
// down when the birthday has not yet occurred in the reference year.
func DobAt(value string, now time.Time) error {
	if value == "" {
		return ErrDOBRequired
	}
	dob, err := time.Parse("2006-01-02", value)
	if err != nil {
		return ErrDOBInvalid
	}

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}

	if age < minAge {
		return ErrDOBUnderage
	}
	if age > maxAge {
		return ErrDOBTooOld
	}
	return nil
}
