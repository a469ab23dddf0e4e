package garage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format of reminder dates on the wire.
const DateLayout = "2006-01-02"

var ErrInvalidInput = errors.New("invalid input")

// ReminderMonths are the intervals offered by the "set date" helper.
var ReminderMonths = []int{1, 2, 3, 6, 12}

// DefaultReminderMonths is preselected in the record form.
const DefaultReminderMonths = 3

// MaxMileage bounds odometer readings and intervals so their sum stays in range.
const MaxMileage = 10_000_000

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ParseMileage parses a required, non-negative odometer value.
func ParseMileage(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid("%s is required", field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be a whole number", field)
	}
	if n < 0 {
		return 0, invalid("%s cannot be negative", field)
	}
	if n > MaxMileage {
		return 0, invalid("%s cannot exceed %d", field, MaxMileage)
	}
	return n, nil
}

// ParseInterval parses an optional "every N miles" value. Empty means none.
func ParseInterval(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil, invalid("mileage_interval must be a positive whole number")
	}
	if n > MaxMileage {
		return nil, invalid("mileage_interval cannot exceed %d", MaxMileage)
	}
	return &n, nil
}

// ParseReminderDate parses an optional YYYY-MM-DD date. Empty means none.
func ParseReminderDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, invalid("reminder_date must be YYYY-MM-DD")
	}
	return &d, nil
}

// ReminderDate returns the date months after now, as offered by the form's
// "set date" button.
func ReminderDate(now time.Time, months int) (string, error) {
	for _, m := range ReminderMonths {
		if m == months {
			return now.UTC().AddDate(0, months, 0).Format(DateLayout), nil
		}
	}
	return "", invalid("reminder interval must be one of %v months", ReminderMonths)
}
