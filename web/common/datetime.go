package common

import (
	"encoding/json"
	"time"

	"timekeep.io/timekeep/calendar"
)

// LocalDateTime is a JSON timestamp without a zone suffix, interpreted in
// the company reference zone.
type LocalDateTime struct {
	time.Time
}

const dateTimeLayout = "2006-01-02T15:04:05"

func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		l.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, calendar.ReferenceZone)
	if err != nil {
		// Fall back to full RFC 3339 with an explicit offset.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t = calendar.ToLocal(t)
	}
	l.Time = t
	return nil
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(l.Format(dateTimeLayout))
}

// DateOnly is a JSON "2006-01-02" date in the reference zone.
type DateOnly struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, calendar.ReferenceZone)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}
