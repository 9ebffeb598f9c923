package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"fleetdash/config"
	"fleetdash/internal/client"
	"fleetdash/internal/db"
	"fleetdash/internal/logs"
	"fleetdash/internal/repo"
	"fleetdash/internal/seed"
	"fleetdash/internal/views"
	"fleetdash/server"
)

const usage = `usage:
  fleetdash [flags]                 run the HTTP server
  fleetdash --seed [flags]          insert demo data and exit
  fleetdash status                  print dashboard counters from a running server
  fleetdash recall|sync <device-id> send a control command to a running server
`

func main() {
	fs := config.Flags()
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage); fs.PrintDefaults() }
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	cfg, v, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if doSeed, _ := fs.GetBool("seed"); doSeed {
		if err := runSeed(cfg); err != nil {
			logs.Logger.Fatalf("seed: %v", err)
		}
		return
	}

	if args := fs.Args(); len(args) > 0 {
		if err := runCommand(cfg, args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	var app server.App
	if err := app.Initialize(cfg, v); err != nil {
		logs.Logger.Fatalf("init: %v", err)
	}
	if err := app.Run(); err != nil {
		logs.Logger.Fatalf("http server: %v", err)
	}
}

func runSeed(cfg *config.Config) error {
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close(d)
	if err := db.Migrate(d); err != nil {
		return err
	}
	_, err = seed.Run(context.Background(), repo.New(d))
	return err
}

// runCommand — CLI поверх HTTP API запущенного сервера.
func runCommand(cfg *config.Config, args []string) error {
	base := cfg.Dashboard.APIBaseURL
	if base == "" {
		base = "http://localhost:" + cfg.Server.HTTPPort
	}
	src := client.New(base, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		d := views.NewDashboard(src)
		if err := d.Refetch(ctx); err != nil {
			return err
		}
		s := d.Snapshot()
		fmt.Printf("devices: %d  models: %d  tasks: %d  active: %d\n",
			s.Stats.Devices, s.Stats.Models, s.Stats.Tasks, s.Stats.ActiveTasks)
		for _, it := range s.Recent {
			fmt.Printf("  %-6s #%-4d %-24s %-12s %s\n", it.Kind, it.ID, it.Name, it.Status, it.CreatedAt.Format(time.RFC3339))
		}
		return nil

	case "recall", "sync":
		if len(args) < 2 {
			return fmt.Errorf("%s: device id required", args[0])
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid device id %q", args[0], args[1])
		}
		notes := views.NewNotifier(cfg.Dashboard.ToastTTL)
		defer notes.Close()
		view := views.NewDevicesView(src, notes)
		action := view.Recall
		if args[0] == "sync" {
			action = view.Sync
		}
		if err := action(ctx, uint(id)); err != nil {
			for _, t := range notes.Active() {
				fmt.Fprintln(os.Stderr, t.Message)
			}
			return err
		}
		s := view.Snapshot()
		fmt.Printf("ok: online %d, offline %d, maintenance %d\n", s.Stats.Online, s.Stats.Offline, s.Stats.Maintenance)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
