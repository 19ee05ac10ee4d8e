package gantt

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gantry-dev/gantry/internal/domain"
)

// Observer is notified after every regenerate with the new batch.
// Observers run on the regenerating goroutine, after the board lock is
// released, in subscription order. The batch is shared between observers
// and must not be modified.
type Observer func(domain.Batch)

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the clock the sampling window is computed from.
func WithClock(clock domain.Clock) Option {
	return func(b *Board) { b.clock = clock }
}

// WithRand overrides the uniform source.
func WithRand(r domain.Rand) Option {
	return func(b *Board) { b.rand = r }
}

// WithSeed makes the board reproducible. Zero keeps it random.
func WithSeed(seed uint64) Option {
	return func(b *Board) {
		if seed != 0 {
			b.rand = SeededRand(seed)
		}
	}
}

// WithObserver subscribes fn before the initial generation, so it also
// sees the first batch.
func WithObserver(fn Observer) Option {
	return func(b *Board) {
		b.observers = append(b.observers, observerEntry{id: b.nextObs, fn: fn})
		b.nextObs++
	}
}

type observerEntry struct {
	id uint64
	fn Observer
}

// Board is the live task list and its regenerate operation.
type Board struct {
	count int
	clock domain.Clock
	rand  domain.Rand
	gen   *Generator

	mu    sync.RWMutex
	tasks []domain.GanttTask
	batch domain.Batch
	seq   uint64

	obsMu     sync.Mutex
	observers []observerEntry
	nextObs   uint64
}

var _ domain.TaskBoard = (*Board)(nil)

// Init creates a board for count records and generates the first batch
// before returning, so the list is already populated.
func Init(count int, opts ...Option) *Board {
	b := &Board{count: count, tasks: []domain.GanttTask{}}
	for _, opt := range opts {
		opt(b)
	}
	b.gen = NewGenerator(b.clock, b.rand)
	b.Regenerate()
	return b
}

// Regenerate clears the list in place and appends count fresh records,
// then returns the batch it produced. The backing slice is reused, so the
// board keeps its identity.
func (b *Board) Regenerate() domain.Batch {
	started := time.Now()
	w := b.gen.Window()

	b.mu.Lock()
	clear(b.tasks)
	b.tasks = b.gen.AppendTo(b.tasks[:0], w, b.count)
	b.seq++
	b.batch = domain.Batch{
		ID:          uuid.New().String(),
		Seq:         b.seq,
		Count:       len(b.tasks),
		GeneratedAt: b.gen.clock(),
		WindowStart: w.Start,
		WindowEnd:   w.End,
		Elapsed:     time.Since(started),
	}
	batch := b.snapshotLocked()
	b.mu.Unlock()

	b.notify(batch)
	return batch
}

// Tasks returns a copy of the current list.
func (b *Board) Tasks() []domain.GanttTask {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.GanttTask, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Len returns the current list length.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tasks)
}

// Count returns the configured batch size.
func (b *Board) Count() int { return b.count }

// Batch returns the latest batch, tasks included.
func (b *Board) Batch() domain.Batch {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// Window returns the sampling window of the latest batch.
func (b *Board) Window() Window {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Window{Start: b.batch.WindowStart, End: b.batch.WindowEnd}
}

// Subscribe registers fn for future batches and returns a function that
// removes it.
func (b *Board) Subscribe(fn Observer) (unsubscribe func()) {
	b.obsMu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers = append(b.observers, observerEntry{id: id, fn: fn})
	b.obsMu.Unlock()

	return func() {
		b.obsMu.Lock()
		defer b.obsMu.Unlock()
		for i, o := range b.observers {
			if o.id == id {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

func (b *Board) snapshotLocked() domain.Batch {
	out := b.batch
	out.Tasks = make([]domain.GanttTask, len(b.tasks))
	copy(out.Tasks, b.tasks)
	return out
}

func (b *Board) notify(batch domain.Batch) {
	b.obsMu.Lock()
	observers := make([]observerEntry, len(b.observers))
	copy(observers, b.observers)
	b.obsMu.Unlock()

	for _, o := range observers {
		o.fn(batch)
	}
}
