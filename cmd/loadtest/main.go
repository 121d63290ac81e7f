package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"chat-archive/internal/config"
	"chat-archive/internal/dto"

	"github.com/fatih/color"
)

const usage = `usage: loadtest <read|write|full> [flags]

  read   concurrent get_by_user / get_by_day / get_by_period requests
  write  concurrent store_message requests
  full   write phase followed by a read phase`

func main() {
	if len(os.Args) < 2 {
		fail(usage)
	}
	mode := os.Args[1]
	if mode != "read" && mode != "write" && mode != "full" {
		fail(usage)
	}

	cfg := config.Load()

	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	baseURL := fs.String("base-url", "http://localhost:"+cfg.App.Port, "archive API base URL")
	concurrency := fs.Int("concurrency", 10, "number of concurrent workers")
	duration := fs.Duration("duration", 60*time.Second, "length of each phase")
	timeout := fs.Duration("timeout", 30*time.Second, "per-request timeout")
	users := fs.Int("users", 10, "number of seed users to query (ids as generated by cmd/seed)")
	startFlag := fs.String("start", time.Now().UTC().AddDate(0, -1, 0).Format(dto.DateLayout), "first day to query (YYYY-MM-DD)")
	endFlag := fs.String("end", time.Now().UTC().Format(dto.DateLayout), "last day to query, inclusive (YYYY-MM-DD)")
	_ = fs.Parse(os.Args[2:])

	start, err := time.Parse(dto.DateLayout, *startFlag)
	if err != nil {
		fail("invalid -start: %v", err)
	}
	end, err := time.Parse(dto.DateLayout, *endFlag)
	if err != nil {
		fail("invalid -end: %v", err)
	}
	if end.Before(start) || *concurrency <= 0 || *users <= 0 || *duration <= 0 {
		fail("need -start <= -end and positive -concurrency, -users, -duration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := NewTarget(strings.TrimRight(*baseURL, "/"), *timeout, SeedUsers(*users), Days(start, end))
	seed := time.Now().UnixNano()

	if mode == "write" || mode == "full" {
		color.Cyan("Running write load test: concurrency=%d, duration=%s", *concurrency, *duration)
		stats := target.Run(ctx, *concurrency, *duration, writeEndpoints, seed)
		printResults("WRITE LOAD TEST RESULTS", stats, *duration)
	}
	if mode == "read" || mode == "full" {
		color.Cyan("Running read load test: concurrency=%d, duration=%s, users=%d, days=%s..%s",
			*concurrency, *duration, *users, *startFlag, *endFlag)
		stats := target.Run(ctx, *concurrency, *duration, readEndpoints, seed)
		printResults("READ LOAD TEST RESULTS", stats, *duration)
	}
}

func printResults(title string, stats map[string]*Stats, duration time.Duration) {
	summaries := make(map[string]Summary, len(stats))
	names := make([]string, 0, len(stats))
	for name, s := range stats {
		summaries[name] = s.Summary()
		names = append(names, name)
	}
	sort.Strings(names)

	rule := strings.Repeat("=", 60)
	fmt.Println()
	color.Cyan(rule)
	color.Cyan(title)
	color.Cyan(rule)

	requests, successes, failures := Totals(summaries)
	overall := color.GreenString
	if failures > 0 {
		overall = color.YellowString
	}
	fmt.Println(overall("Overall: %d requests, %d successes, %d failures", requests, successes, failures))
	fmt.Printf("Throughput: %.2f req/sec\n", Throughput(requests, duration))

	for _, name := range names {
		color.Yellow("\n%s:", name)
		fmt.Println(strings.Repeat("-", 40))
		for _, line := range summaries[name].Lines() {
			fmt.Println(line)
		}
	}
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}
