package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxSampleErrors = 10

// Stats aggregates the outcome of every request sent to one endpoint.
// Safe for concurrent use by the workers.
type Stats struct {
	mu          sync.Mutex
	requests    int
	successes   int
	failures    int
	total       time.Duration
	min         time.Duration
	max         time.Duration
	statusCodes map[int]int
	errors      []string
}

func NewStats() *Stats {
	return &Stats{statusCodes: make(map[int]int)}
}

// Record counts one request. A 2xx status is a success; a transport error
// (status 0) or any other status is a failure.
func (s *Stats) Record(elapsed time.Duration, status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	s.total += elapsed
	if s.requests == 1 || elapsed < s.min {
		s.min = elapsed
	}
	if elapsed > s.max {
		s.max = elapsed
	}

	if status > 0 {
		s.statusCodes[status]++
	}
	if status >= 200 && status < 300 {
		s.successes++
	} else {
		s.failures++
	}

	if err != nil && len(s.errors) < maxSampleErrors {
		s.errors = append(s.errors, err.Error())
	}
}

// Summary is a point-in-time copy of Stats.
type Summary struct {
	Requests    int
	Successes   int
	Failures    int
	Avg         time.Duration
	Min         time.Duration
	Max         time.Duration
	StatusCodes map[int]int
	Errors      []string
}

func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Requests:    s.requests,
		Successes:   s.successes,
		Failures:    s.failures,
		Min:         s.min,
		Max:         s.max,
		StatusCodes: make(map[int]int, len(s.statusCodes)),
		Errors:      append([]string(nil), s.errors...),
	}
	if s.requests > 0 {
		sum.Avg = s.total / time.Duration(s.requests)
	}
	for code, n := range s.statusCodes {
		sum.StatusCodes[code] = n
	}
	return sum
}

// Totals sums the per-endpoint summaries of one run.
func Totals(summaries map[string]Summary) (requests, successes, failures int) {
	for _, s := range summaries {
		requests += s.Requests
		successes += s.Successes
		failures += s.Failures
	}
	return requests, successes, failures
}

// Throughput is requests per second over the configured run duration.
func Throughput(requests int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(requests) / d.Seconds()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
}

// Lines renders the summary one metric per line.
func (s Summary) Lines() []string {
	minTime := "N/A"
	if s.Requests > 0 {
		minTime = millis(s.Min)
	}

	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%d: %d", code, s.StatusCodes[code]))
	}

	lines := []string{
		fmt.Sprintf("Total requests:  %d", s.Requests),
		fmt.Sprintf("Successes:       %d", s.Successes),
		fmt.Sprintf("Failures:        %d", s.Failures),
		fmt.Sprintf("Avg time:        %s", millis(s.Avg)),
		fmt.Sprintf("Min time:        %s", minTime),
		fmt.Sprintf("Max time:        %s", millis(s.Max)),
		fmt.Sprintf("Status codes:    {%s}", strings.Join(parts, ", ")),
	}
	if len(s.Errors) > 0 {
		sample := s.Errors
		if len(sample) > 3 {
			sample = sample[:3]
		}
		lines = append(lines, fmt.Sprintf("Sample errors:   %s", strings.Join(sample, "; ")))
	}
	return lines
}
