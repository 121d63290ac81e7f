package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"chat-archive/internal/config"
	"chat-archive/internal/dto"
	"chat-archive/internal/entity"
	"chat-archive/internal/pkg/logger"
	"chat-archive/internal/repository/unitofwork"
	"chat-archive/pkg/database"

	"github.com/fatih/color"
)

func main() {
	count := flag.Int("count", 1000, "number of messages to generate")
	startFlag := flag.String("start", time.Now().UTC().AddDate(0, -1, 0).Format(dto.DateLayout), "first day (YYYY-MM-DD)")
	endFlag := flag.String("end", time.Now().UTC().Format(dto.DateLayout), "last day, inclusive (YYYY-MM-DD)")
	users := flag.Int("users", 10, "number of distinct synthetic users")
	batch := flag.Int("batch", 500, "messages per transaction")
	flag.Parse()

	start, err := time.Parse(dto.DateLayout, *startFlag)
	if err != nil {
		fail("invalid -start: %v", err)
	}
	end, err := time.Parse(dto.DateLayout, *endFlag)
	if err != nil {
		fail("invalid -end: %v", err)
	}
	if end.Before(start) || *count <= 0 || *users <= 0 || *batch <= 0 {
		fail("need -start <= -end and positive -count, -users, -batch")
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		fail("DATABASE_URL is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{SQLEcho: cfg.Database.SQLEcho})
	if err != nil {
		fail("failed to connect to database: %v", err)
	}
	factory := unitofwork.NewRepositoryFactory(db, logger.NewNop())

	gen := newGenerator(start, end.AddDate(0, 0, 1), *users, time.Now().UnixNano())
	ctx := context.Background()
	began := time.Now()

	color.Cyan("Seeding %d messages for %d users between %s and %s", *count, *users, *startFlag, *endFlag)
	for done := 0; done < *count; {
		n := *batch
		if rest := *count - done; rest < n {
			n = rest
		}
		if err := writeBatch(ctx, factory, gen, n); err != nil {
			fail("batch at %d failed: %v", done, err)
		}
		done += n
		fmt.Printf("\r%d/%d", done, *count)
	}
	fmt.Println()

	elapsed := time.Since(began)
	color.Green("Done in %s (%.0f msg/s)", elapsed.Round(time.Millisecond), float64(*count)/elapsed.Seconds())
}

func writeBatch(ctx context.Context, factory unitofwork.RepositoryFactory, gen *generator, n int) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	repo := uow.ChatMessageRepository()
	for i := 0; i < n; i++ {
		if err := repo.Save(ctx, gen.next()); err != nil {
			_ = uow.Rollback()
			return err
		}
	}
	return uow.Commit()
}

// generator spreads messages uniformly over [from, to).
type generator struct {
	rnd   *rand.Rand
	from  time.Time
	span  int64
	users int
}

func newGenerator(from, to time.Time, users int, seed int64) *generator {
	return &generator{
		rnd:   rand.New(rand.NewSource(seed)),
		from:  from,
		span:  int64(to.Sub(from) / time.Microsecond),
		users: users,
	}
}

var topics = []string{"billing", "shipping", "returns", "account", "warranty", "pricing"}

func (g *generator) next() *entity.ChatMessage {
	user := g.rnd.Intn(g.users)
	topic := topics[g.rnd.Intn(len(topics))]
	msg := entity.NewChatMessage(
		fmt.Sprintf("seed-user-%04d", user),
		fmt.Sprintf("Seed User %d", user),
		fmt.Sprintf("How does %s work?", topic),
		fmt.Sprintf("Here is how %s works.", topic),
	)
	msg.CreatedAt = g.from.Add(time.Duration(g.rnd.Int63n(g.span)) * time.Microsecond)
	return msg
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}
