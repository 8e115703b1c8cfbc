/*
Package benchmark measures composer latency against a live catalog.

Each scenario runs a composer repeatedly and reports latency percentiles and
the average number of results, so a slow query plan or an empty catalog is
visible before it reaches users.
*/
package benchmark

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/khanglvm/city-hub/internal/recommend"
)

// DefaultRuns is the number of iterations per scenario.
const DefaultRuns = 50

// Result contains latency statistics for one scenario.
type Result struct {
	Name     string        `json:"name"`
	Runs     int           `json:"runs"`
	Min      time.Duration `json:"min"`
	Mean     time.Duration `json:"mean"`
	P50      time.Duration `json:"p50"`
	P95      time.Duration `json:"p95"`
	Max      time.Duration `json:"max"`
	AvgItems float64       `json:"avgItems"`
}

// Measure runs fn runs times. fn returns the number of results it produced.
func Measure(name string, runs int, fn func() int) Result {
	if runs <= 0 {
		runs = DefaultRuns
	}

	durations := make([]time.Duration, runs)
	var total time.Duration
	items := 0
	for i := range durations {
		start := time.Now()
		items += fn()
		durations[i] = time.Since(start)
		total += durations[i]
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return Result{
		Name:     name,
		Runs:     runs,
		Min:      durations[0],
		Mean:     total / time.Duration(runs),
		P50:      percentile(durations, 50),
		P95:      percentile(durations, 95),
		Max:      durations[runs-1],
		AvgItems: float64(items) / float64(runs),
	}
}

// percentile uses nearest-rank on sorted durations.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// RunComposers benchmarks anonymous and per-user recommendations and the
// showcase. Either composer may be nil.
func RunComposers(ctx context.Context, composer *recommend.Composer, showcase *recommend.Showcase, users []string, runs int) []Result {
	var results []Result

	if composer != nil {
		results = append(results, Measure("recommend (anonymous)", runs, func() int {
			return len(composer.Recommend(ctx, ""))
		}))

		if len(users) > 0 {
			i := 0
			results = append(results, Measure(fmt.Sprintf("recommend (%d users)", len(users)), runs, func() int {
				user := users[i%len(users)]
				i++
				return len(composer.Recommend(ctx, user))
			}))
		}
	}

	if showcase != nil {
		results = append(results, Measure("showcase", runs, func() int {
			return len(showcase.Compose(ctx))
		}))
	}

	return results
}

// FormatResult formats benchmark results for display.
func FormatResult(results []Result) string {
	var sb strings.Builder

	sb.WriteString("╔════════════════════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║                    COMPOSER LATENCY BENCHMARK RESULTS                      ║\n")
	sb.WriteString("╠════════════════════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  %-24s %5s %9s %9s %9s %9s %6s ║\n", "scenario", "runs", "mean", "p50", "p95", "max", "items"))
	sb.WriteString("╟────────────────────────────────────────────────────────────────────────────╢\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("║  %-24s %5d %9s %9s %9s %9s %6.1f ║\n",
			truncate(r.Name, 24), r.Runs, round(r.Mean), round(r.P50), round(r.P95), round(r.Max), r.AvgItems))
	}
	sb.WriteString("╚════════════════════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

func round(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
