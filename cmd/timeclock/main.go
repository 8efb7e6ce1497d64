package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
	"timekeep.io/timekeep/infrastructure/devops"
	"timekeep.io/timekeep/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var userFlag = &cli.StringFlag{
	Name:     "user",
	Aliases:  []string{"u"},
	Usage:    "user id to act as",
	Required: true,
}

func run() error {
	app := &cli.App{
		Name:  "timeclock",
		Usage: "attendance tracking from the terminal",
		Commands: []*cli.Command{
			inCommand,
			outCommand,
			breakCommand,
			statusCommand,
			reportCommand,
			pendingCommand,
		},
	}
	return app.Run(os.Args)
}

var inCommand = &cli.Command{
	Name:  "in",
	Usage: "clock in",
	Flags: []cli.Flag{
		userFlag,
		&cli.StringFlag{Name: "notes", Usage: "free-form notes"},
		&cli.StringFlag{Name: "location", Usage: "where you are working from"},
	},
	Action: func(c *cli.Context) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		record, err := svc.ClockIn(c.Context, c.String("user"), core.ClockInInput{
			Notes:    c.String("notes"),
			Location: c.String("location"),
		})
		if err != nil {
			return err
		}
		fmt.Printf("clocked in at %s\n", record.ClockIn.Format("15:04"))
		return nil
	},
}

var outCommand = &cli.Command{
	Name:  "out",
	Usage: "clock out",
	Flags: []cli.Flag{userFlag},
	Action: func(c *cli.Context) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		record, err := requireActive(c.Context, svc, c.String("user"))
		if err != nil {
			return err
		}
		record, err = svc.ClockOut(c.Context, record.ID, nil)
		if err != nil {
			return err
		}
		fmt.Printf("clocked out at %s, worked %.2fh\n", record.ClockOut.Format("15:04"), record.TotalHours)
		return nil
	},
}

var breakCommand = &cli.Command{
	Name:  "break",
	Usage: "start or end a break",
	Subcommands: []*cli.Command{
		{
			Name:  "start",
			Usage: "start a break",
			Flags: []cli.Flag{
				userFlag,
				&cli.StringFlag{
					Name:  "type",
					Value: string(models.BreakShort),
					Usage: "lunch, short_break or extended_break",
				},
			},
			Action: func(c *cli.Context) error {
				svc, cleanup, err := newService()
				if err != nil {
					return err
				}
				defer cleanup()

				record, err := requireActive(c.Context, svc, c.String("user"))
				if err != nil {
					return err
				}
				_, warnings, err := svc.AddBreak(c.Context, record.ID, models.BreakType(c.String("type")), nil)
				if err != nil {
					return err
				}
				fmt.Println("break started")
				for _, w := range warnings {
					fmt.Printf("warning: %s\n", w)
				}
				return nil
			},
		},
		{
			Name:  "end",
			Usage: "end the open break",
			Flags: []cli.Flag{userFlag},
			Action: func(c *cli.Context) error {
				svc, cleanup, err := newService()
				if err != nil {
					return err
				}
				defer cleanup()

				record, err := requireActive(c.Context, svc, c.String("user"))
				if err != nil {
					return err
				}
				open := record.OpenBreak()
				if open == nil {
					return fmt.Errorf("no break in progress")
				}
				_, warnings, err := svc.EndBreak(c.Context, record.ID, open.ID, nil)
				if err != nil {
					return err
				}
				fmt.Println("break ended")
				for _, w := range warnings {
					fmt.Printf("warning: %s\n", w)
				}
				return nil
			},
		},
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "show today's progress",
	Flags: []cli.Flag{userFlag},
	Action: func(c *cli.Context) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		progress, err := svc.GetTodayProgress(c.Context, c.String("user"))
		if err != nil {
			return err
		}
		if !progress.ClockedIn {
			fmt.Printf("not clocked in, %.2fh worked today\n", progress.HoursWorked)
			return nil
		}
		state := "working"
		if progress.OnBreak {
			state = "on break"
		}
		fmt.Printf("%s, %.2fh of %.2fh (%.0f%%)\n", state, progress.HoursWorked, progress.GoalHours, progress.PercentOfGoal)

		if projected, err := svc.GetProjectedCompletionTime(c.Context, c.String("user")); err == nil {
			fmt.Printf("projected completion: %s\n", projected.Format("15:04"))
		}
		return nil
	},
}

var pendingCommand = &cli.Command{
	Name:  "pending",
	Usage: "list records that look like forgotten clock-outs",
	Action: func(c *cli.Context) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := svc.FindPendingEntries(c.Context)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%s  %s  clocked in %s\n", r.ID, r.UserID, r.ClockIn.Format("2006-01-02 15:04"))
		}
		if len(records) == 0 {
			fmt.Println("nothing pending")
		}
		return nil
	},
}

func newService() (*core.Service, func(), error) {
	dir, err := timekeepDir()
	if err != nil {
		return nil, nil, err
	}

	repo, err := store.NewBunt(filepath.Join(dir, "timekeep.db"))
	if err != nil {
		return nil, nil, err
	}

	cfg := core.Config{}
	if path := os.Getenv("POLICY_FILE"); path != "" {
		policy, err := devops.LoadPolicyFile(path)
		if err != nil {
			repo.Close()
			return nil, nil, err
		}
		cfg = policy.EngineConfig()
	}

	svc := core.NewService(repo, core.NewBroadcaster(), newLogger(dir), cfg)
	return svc, func() { repo.Close() }, nil
}

func requireActive(ctx context.Context, svc *core.Service, userID string) (*models.AttendanceRecord, error) {
	record, err := svc.FindActiveEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("user %s is not clocked in", userID)
	}
	return record, nil
}

func newLogger(dir string) *slog.Logger {
	logFile, err := os.OpenFile(filepath.Join(dir, "log.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(err)
	}

	return slog.New(
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}),
	)
}

func timekeepDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".timekeep")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.Mkdir(dir, 0755); err != nil {
			return "", err
		}
	}
	return dir, nil
}
