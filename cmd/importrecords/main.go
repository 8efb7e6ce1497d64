// Command importrecords replays a badge-reader punch export through the
// attendance engine, creating one completed record per user per day.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"timekeep.io/timekeep/cmd/importrecords/helper"
	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/store"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: importrecords <punches.csv>")
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	punches, err := helper.ParsePunchCSV(f)
	if err != nil {
		log.Fatal(err)
	}
	spans := helper.GroupPunches(punches)

	repo, closeRepo, err := newRepository()
	if err != nil {
		log.Fatal(err)
	}
	defer closeRepo()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	// No future-skew limit matters here; imports are always in the past.
	svc := core.NewService(repo, core.NewBroadcaster(), logger, core.Config{})

	ctx := context.Background()
	imported := 0
	for _, span := range spans {
		if len(span.Punches) < 2 {
			logger.Warn("skipping span with a single punch",
				slog.String("user_id", span.UserID), slog.String("date", span.Date))
			continue
		}

		from := span.From
		record, err := svc.ClockIn(ctx, span.UserID, core.ClockInInput{
			At:       &from,
			Notes:    fmt.Sprintf("imported from %s", os.Args[1]),
			Location: span.Location,
		})
		if err != nil {
			logger.Error("clock in failed",
				slog.String("user_id", span.UserID), slog.String("date", span.Date),
				slog.String("error", err.Error()))
			continue
		}

		to := span.To
		if _, err := svc.ClockOut(ctx, record.ID, &to); err != nil {
			logger.Error("clock out failed",
				slog.String("record_id", record.ID), slog.String("error", err.Error()))
			continue
		}
		imported++
	}

	fmt.Printf("imported %d of %d spans\n", imported, len(spans))
}

func newRepository() (core.Repository, func(), error) {
	if dsn := os.Getenv("DSN"); dsn != "" {
		repo, err := store.NewGorm(dsn, 10)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	}

	path := os.Getenv("BUNT_PATH")
	if path == "" {
		path = "timekeep.db"
	}
	repo, err := store.NewBunt(path)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}
