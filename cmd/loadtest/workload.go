package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"chat-archive/internal/dto"

	"github.com/google/uuid"
)

const (
	GetByUser   = "get_by_user"
	GetByDay    = "get_by_day"
	GetByPeriod = "get_by_period"
	Store       = "store_message"
)

var (
	pageSizes = []int{10, 50, 100}
	topics    = []string{"billing", "shipping", "returns", "account", "warranty", "pricing"}
	senders   = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}
)

// Target is the archive API under test plus the user ids and days the read
// workload samples from.
type Target struct {
	client  *http.Client
	baseURL string
	users   []string
	days    []time.Time
}

func NewTarget(baseURL string, timeout time.Duration, users []string, days []time.Time) *Target {
	return &Target{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		users:   users,
		days:    days,
	}
}

// SeedUsers returns the ids cmd/seed generates for n users.
func SeedUsers(n int) []string {
	users := make([]string, n)
	for i := range users {
		users[i] = fmt.Sprintf("seed-user-%04d", i)
	}
	return users
}

// Days lists every UTC day from start to end, both inclusive.
func Days(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start.UTC(); !d.After(end.UTC()); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

type sendFunc func(t *Target, ctx context.Context, rnd *rand.Rand) (int, error)

var (
	readEndpoints = map[string]sendFunc{
		GetByUser:   (*Target).getByUser,
		GetByDay:    (*Target).getByDay,
		GetByPeriod: (*Target).getByPeriod,
	}
	writeEndpoints = map[string]sendFunc{
		Store: (*Target).storeMessage,
	}
)

// Run keeps `concurrency` workers busy for `duration`, each picking a random
// endpoint per request. Requests cut off by the end of the run are not counted.
func (t *Target) Run(ctx context.Context, concurrency int, duration time.Duration, endpoints map[string]sendFunc, seed int64) map[string]*Stats {
	names := make([]string, 0, len(endpoints))
	stats := make(map[string]*Stats, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
		stats[name] = NewStats()
	}

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(rnd *rand.Rand) {
			defer wg.Done()
			for ctx.Err() == nil {
				name := names[rnd.Intn(len(names))]
				began := time.Now()
				status, err := endpoints[name](t, ctx, rnd)
				if err != nil && ctx.Err() != nil {
					return
				}
				stats[name].Record(time.Since(began), status, err)
			}
		}(rand.New(rand.NewSource(seed + int64(i))))
	}
	wg.Wait()

	return stats
}

func (t *Target) window(rnd *rand.Rand) (time.Time, time.Time) {
	i := rnd.Intn(len(t.days))
	j := i + 7 + rnd.Intn(24)
	if j >= len(t.days) {
		j = len(t.days) - 1
	}
	return t.days[i], t.days[j]
}

func pageParams(q url.Values, rnd *rand.Rand) {
	q.Set("page_size", strconv.Itoa(pageSizes[rnd.Intn(len(pageSizes))]))
	q.Set("page", strconv.Itoa(rnd.Intn(6)))
}

func (t *Target) getByUser(ctx context.Context, rnd *rand.Rand) (int, error) {
	start, end := t.window(rnd)
	q := url.Values{}
	q.Set("start", start.Format(dto.DateLayout))
	q.Set("end", end.Format(dto.DateLayout))
	pageParams(q, rnd)
	user := url.PathEscape(t.users[rnd.Intn(len(t.users))])
	return t.send(ctx, http.MethodGet, "/api/v1/users/"+user+"/messages?"+q.Encode(), nil)
}

func (t *Target) getByDay(ctx context.Context, rnd *rand.Rand) (int, error) {
	q := url.Values{}
	q.Set("day", t.days[rnd.Intn(len(t.days))].Format(dto.DateLayout))
	pageParams(q, rnd)
	return t.send(ctx, http.MethodGet, "/api/v1/messages?"+q.Encode(), nil)
}

func (t *Target) getByPeriod(ctx context.Context, rnd *rand.Rand) (int, error) {
	start, end := t.window(rnd)
	q := url.Values{}
	q.Set("start", start.Format(dto.DateLayout))
	q.Set("end", end.Format(dto.DateLayout))
	pageParams(q, rnd)
	return t.send(ctx, http.MethodGet, "/api/v1/messages?"+q.Encode(), nil)
}

func (t *Target) storeMessage(ctx context.Context, rnd *rand.Rand) (int, error) {
	topic := topics[rnd.Intn(len(topics))]
	body := dto.StoreMessageRequest{
		UserId:   "load-user-" + uuid.NewString()[:8],
		Name:     senders[rnd.Intn(len(senders))],
		Question: fmt.Sprintf("How does %s work?", topic),
		Answer:   fmt.Sprintf("Here is how %s works.", topic),
	}
	return t.send(ctx, http.MethodPost, "/api/v1/messages", body)
}

func (t *Target) send(ctx context.Context, method, path string, body interface{}) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bodyReader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Client-ID", "loadtest")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return resp.StatusCode, nil
}
