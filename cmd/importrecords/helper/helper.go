// Package helper parses badge-reader punch exports into per-user day spans
// ready to replay through the attendance engine.
package helper

import (
	"fmt"
	"io"
	"sort"
	"time"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/utils"
)

// Punch is one row of the export: a single badge swipe.
type Punch struct {
	UserID    string
	Timestamp time.Time
	Date      string
	Location  string
}

// DaySpan is all of one user's punches on one day. From is the earliest
// swipe, To the latest.
type DaySpan struct {
	UserID   string
	Date     string
	From     time.Time
	To       time.Time
	Location string
	Punches  []Punch
}

// ParsePunchCSV reads "user_id,timestamp,location" rows, header first.
// Timestamps are RFC 3339 and get converted to the reference zone.
func ParsePunchCSV(r io.Reader) ([]Punch, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}

	var punches []Punch
	for i, row := range rows {
		if i == 0 {
			continue
		}

		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, got %d", i, len(row))
		}

		timestamp, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i, err)
		}
		timestamp = calendar.ToLocal(timestamp)

		punches = append(punches, Punch{
			UserID:    row[0],
			Timestamp: timestamp,
			Date:      timestamp.Format("2006-01-02"),
			Location:  row[2],
		})
	}

	return punches, nil
}

// GroupPunches buckets punches per user and day, oldest day first.
func GroupPunches(punches []Punch) []DaySpan {
	grouped := make(map[string]DaySpan)

	for _, p := range punches {
		key := p.UserID + "|" + p.Date
		span, exists := grouped[key]

		if !exists {
			grouped[key] = DaySpan{
				UserID:   p.UserID,
				Date:     p.Date,
				From:     p.Timestamp,
				To:       p.Timestamp,
				Location: p.Location,
				Punches:  []Punch{p},
			}
		} else {
			if p.Timestamp.Before(span.From) {
				span.From = p.Timestamp
				span.Location = p.Location
			}
			if p.Timestamp.After(span.To) {
				span.To = p.Timestamp
			}
			span.Punches = append(span.Punches, p)
			grouped[key] = span
		}
	}

	spans := make([]DaySpan, 0, len(grouped))
	for _, span := range grouped {
		spans = append(spans, span)
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Date != spans[j].Date {
			return spans[i].Date < spans[j].Date
		}
		return spans[i].UserID < spans[j].UserID
	})

	return spans
}
