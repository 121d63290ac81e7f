package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"chat-archive/internal/config"
	"chat-archive/internal/migration"
	"chat-archive/internal/pkg/logger"
	"chat-archive/pkg/database"
	"chat-archive/pkg/partition"

	"github.com/fatih/color"
)

func main() {
	down := flag.Bool("down", false, "revert applied migrations instead of applying pending ones")
	dryRun := flag.Bool("dry-run", false, "print the SQL without connecting to the database")
	showPlan := flag.Bool("plan", false, "print the monthly partition plan and exit")
	route := flag.String("route", "", "comma-separated timestamps (RFC 3339 or YYYY-MM-DD) to route through the plan, then exit")
	flag.Parse()

	cfg := config.Load()

	plan, err := partition.Plan(migration.TableName,
		partition.Month{Year: cfg.Partition.StartYear, Month: time.Month(cfg.Partition.StartMonth)},
		partition.Month{Year: cfg.Partition.EndYear, Month: time.Month(cfg.Partition.EndMonth)},
	)
	if err != nil {
		fail("invalid partition range: %v", err)
	}

	migrations := migration.ChatArchive(plan)

	if *showPlan {
		printPlan(plan)
		return
	}

	if *route != "" {
		times, err := parseTimestamps(*route)
		if err != nil {
			fail("invalid -route: %v", err)
		}
		printRoutes(plan, times)
		return
	}

	if *dryRun {
		for _, mig := range migrations {
			stmts := mig.Up
			if *down {
				stmts = mig.Down
			}
			color.Cyan("-- revision %s: %s", mig.Version, mig.Description)
			for _, stmt := range stmts {
				fmt.Printf("%s;\n", stmt)
			}
		}
		return
	}

	if cfg.Database.Connection == "" {
		fail("DATABASE_URL is not set")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.JSONLogs(), cfg.App.LogLevel)
	defer sysLogger.Sync()

	color.Cyan("Connecting to %s", database.MaskDSN(cfg.Database.Connection))
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{SQLEcho: cfg.Database.SQLEcho})
	if err != nil {
		fail("failed to connect to database: %v", err)
	}

	migrator := migration.NewMigrator(db, sysLogger, migrations)
	ctx := context.Background()

	if *down {
		reverted, err := migrator.Down(ctx)
		if err != nil {
			fail("downgrade failed: %v", err)
		}
		report("Reverted", reverted)
		return
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		fail("upgrade failed: %v", err)
	}
	report("Applied", applied)
}

func printPlan(plan []partition.Partition) {
	color.Cyan("%-24s %-12s %-12s", "PARTITION", "FROM", "TO")
	for _, p := range plan {
		fmt.Printf("%-24s %-12s %-12s\n", p.Name, p.Start.Format(partition.DateLayout), p.End.Format(partition.DateLayout))
	}
	fmt.Printf("%-24s %-12s %-12s\n", partition.DefaultName(migration.TableName), "(default)", "")
	color.Green("%d monthly partitions", len(plan))
}

// parseTimestamps accepts RFC 3339 timestamps or bare days (midnight UTC).
func parseTimestamps(list string) ([]time.Time, error) {
	var times []time.Time
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			if t, err = time.Parse(partition.DateLayout, raw); err != nil {
				return nil, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", raw)
			}
		}
		times = append(times, t.UTC())
	}
	return times, nil
}

type routedTimestamp struct {
	At        time.Time
	Partition string
}

func routeAll(plan []partition.Partition, times []time.Time) []routedTimestamp {
	routed := make([]routedTimestamp, len(times))
	for i, t := range times {
		routed[i] = routedTimestamp{At: t, Partition: partition.Locate(migration.TableName, plan, t)}
	}
	return routed
}

func printRoutes(plan []partition.Partition, times []time.Time) {
	defaultName := partition.DefaultName(migration.TableName)
	color.Cyan("%-32s %s", "TIMESTAMP (UTC)", "PARTITION")
	for _, r := range routeAll(plan, times) {
		line := fmt.Sprintf("%-32s %s", r.At.Format(time.RFC3339Nano), r.Partition)
		if r.Partition == defaultName {
			color.Yellow("%s", line)
			continue
		}
		fmt.Println(line)
	}
}

func report(verb string, versions []string) {
	if len(versions) == 0 {
		color.Yellow("Nothing to do: schema is up to date")
		return
	}
	for _, v := range versions {
		color.Green("%s revision %s", verb, v)
	}
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}
