package partition

import (
	"fmt"
	"time"
)

// DateLayout is the literal format used in partition bounds.
const DateLayout = "2006-01-02"

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December {
		return fmt.Errorf("partition: invalid month %d", m.Month)
	}
	if m.Year < 1 {
		return fmt.Errorf("partition: invalid year %d", m.Year)
	}
	return nil
}

// Next returns the month that follows m, rolling December into January.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// FirstDay is 00:00 UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Partition is one monthly range [Start, End) of the parent table.
type Partition struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the half-open range.
func (p Partition) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Name derives the deterministic partition name, e.g. chat_messages_202506.
func Name(table string, m Month) string {
	return fmt.Sprintf("%s_%04d%02d", table, m.Year, int(m.Month))
}

// DefaultName is the catch-all partition for rows outside every planned range.
func DefaultName(table string) string {
	return table + "_default"
}

// Plan returns one contiguous, non-overlapping partition per calendar month
// from `from` to `to`, both inclusive. A reversed range yields an empty plan.
func Plan(table string, from, to Month) ([]Partition, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}

	var partitions []Partition
	for m := from; !to.Before(m); m = m.Next() {
		partitions = append(partitions, Partition{
			Name:  Name(table, m),
			Start: m.FirstDay(),
			End:   m.Next().FirstDay(),
		})
	}
	return partitions, nil
}

// Locate returns the name of the partition a timestamp is routed to.
func Locate(table string, partitions []Partition, t time.Time) string {
	t = t.UTC()
	for _, p := range partitions {
		if p.Contains(t) {
			return p.Name
		}
	}
	return DefaultName(table)
}
