// Package report summarizes statement cache behavior after a replay.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/electwix/stmtpool/internal/stmtcache"
)

// ratioPlaces is the number of decimal places HitRatio rounds to.
const ratioPlaces = 4

// Summary is the outcome of one workload run.
type Summary struct {
	Steps      int
	Executions int
	Rows       int
	Capacity   int
	Cached     int
	Stats      stmtcache.Stats
}

// HitRatio returns hits / (hits + misses) rounded to four places, or zero
// when the cache was never consulted.
func (s Summary) HitRatio() decimal.Decimal {
	lookups := s.Stats.Lookups()
	if lookups == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Stats.Hits)).
		DivRound(decimal.NewFromInt(int64(lookups)), ratioPlaces)
}

// Write prints the summary as aligned "name: value" lines.
func (s Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	lines := []struct {
		name  string
		value any
	}{
		{"steps", s.Steps},
		{"executions", s.Executions},
		{"rows", s.Rows},
		{"capacity", s.Capacity},
		{"cached", s.Cached},
		{"hits", s.Stats.Hits},
		{"misses", s.Stats.Misses},
		{"inserts", s.Stats.Inserts},
		{"evictions", s.Stats.Evictions},
		{"close errors", s.Stats.CloseErrors},
		{"hit ratio", s.HitRatio().StringFixed(ratioPlaces)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(tw, "%s:\t%v\n", line.name, line.value); err != nil {
			return err
		}
	}
	return tw.Flush()
}
