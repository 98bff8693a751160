package helpers

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the date-time format used in request and response bodies and in query strings.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a time.Time that (un)marshals using DateTimeLayout in the server's local zone.
type DateTime time.Time

func (d DateTime) Time() time.Time {
	return time.Time(d)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).In(time.Local).Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date-time must be a string in format %q", DateTimeLayout)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = DateTime(t)
	return nil
}

// ParseDateTime parses s in DateTimeLayout.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q, expected format %q", s, DateTimeLayout)
	}
	return t, nil
}

// NullableDateTime converts an optional time to its wire form.
func NullableDateTime(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	d := DateTime(*t)
	return &d
}
