// Package gantt fabricates synthetic Gantt task batches for UI prototyping.
//
// Init returns a Board: a live task list plus a Regenerate operation that
// clears the list in place and refills it. Observers subscribed to the board
// receive every new batch.
package gantt

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/gantry-dev/gantry/internal/domain"
)

const (
	// DefaultCount is the batch size used when the caller has no preference.
	DefaultCount = 100

	// WindowDays is the half-width of the sampling window around today.
	WindowDays = 10

	// MaxDurationDays bounds task length; the minimum is one day.
	MaxDurationDays = 10

	// MaxProgress is the inclusive upper bound of a progress draw.
	MaxProgress = 100
)

// Window is the span task starts are drawn from.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor normalizes now to local midnight and extends it WindowDays
// calendar days in each direction.
func WindowFor(now time.Time) Window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{
		Start: today.AddDate(0, 0, -WindowDays),
		End:   today.AddDate(0, 0, WindowDays),
	}
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// At interpolates linearly across the window's millisecond span.
// r is clamped to [0, 1], so the result always lies in the window.
func (w Window) At(r float64) time.Time {
	r = min(max(r, 0), 1)
	span := w.End.Sub(w.Start).Milliseconds()
	offset := time.Duration(r*float64(span)) * time.Millisecond
	return w.Start.Add(offset)
}

// Generator synthesizes task records from a clock and a uniform source.
// It holds no list state; Board owns that.
type Generator struct {
	clock domain.Clock
	rand  domain.Rand
}

// NewGenerator creates a generator. Nil collaborators fall back to
// time.Now and an unseeded PCG source.
func NewGenerator(clock domain.Clock, r domain.Rand) *Generator {
	if clock == nil {
		clock = time.Now
	}
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{clock: clock, rand: r}
}

// Window returns the sampling window for the current clock reading.
func (g *Generator) Window() Window {
	return WindowFor(g.clock())
}

// Generate returns count fresh records. A non-positive count yields none.
func (g *Generator) Generate(count int) []domain.GanttTask {
	return g.AppendTo(nil, g.Window(), count)
}

// AppendTo appends count records drawn from w to dst and returns the
// extended slice.
func (g *Generator) AppendTo(dst []domain.GanttTask, w Window, count int) []domain.GanttTask {
	for i := 0; i < count; i++ {
		dst = append(dst, g.Synthesize(i, w))
	}
	return dst
}

// Synthesize builds the record for 0-based index i.
func (g *Generator) Synthesize(i int, w Window) domain.GanttTask {
	start := w.At(g.rand.Float64())
	days := draw(g.rand.IntN(MaxDurationDays), MaxDurationDays) + 1
	id := i + 1

	return domain.GanttTask{
		ID:       id,
		User:     pick(domain.Users, g.rand.IntN(len(domain.Users))),
		Task:     "Task " + strconv.Itoa(id),
		Status:   pick(domain.Statuses, g.rand.IntN(len(domain.Statuses))),
		Start:    start,
		End:      start.AddDate(0, 0, days),
		Progress: draw(g.rand.IntN(MaxProgress+1), MaxProgress+1),
	}
}

// pick returns set[i], or the set's first element when i is out of range.
// The source is injectable, so a bad draw is possible.
func pick[T any](set []T, i int) T {
	if i < 0 || i >= len(set) {
		return set[0]
	}
	return set[i]
}

// draw returns i when it lies in [0, n) and 0 otherwise, the numeric
// counterpart of pick.
func draw(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}

// SeededRand returns a deterministic source for reproducible batches.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
