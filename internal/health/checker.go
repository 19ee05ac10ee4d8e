// Package health provides periodic health checks with auto-recovery for the
// live board and its SQL mirror.
package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gantry-dev/gantry/internal/domain"
)

// DefaultInterval is how often checks run when none is configured.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	Recovered bool      `json:"recovered,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker with the standard checks: sqlite, board and
// mirror. A non-positive interval uses DefaultInterval.
func NewChecker(store domain.TaskStore, board domain.TaskBoard, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{
		interval: interval,
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return store.Ping()
				},
			},
			{
				Name: "board",
				CheckFn: func(ctx context.Context) error {
					return checkBoard(board)
				},
				RecoverFn: func(ctx context.Context) error {
					board.Regenerate()
					return checkBoard(board)
				},
			},
			{
				Name: "mirror",
				CheckFn: func(ctx context.Context) error {
					return checkMirror(store, board)
				},
				RecoverFn: func(ctx context.Context) error {
					if err := store.ReplaceBatch(board.Batch()); err != nil {
						return err
					}
					return checkMirror(store, board)
				},
			},
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

// RunOnce runs every check a single time and records the results.
func (c *Checker) RunOnce(ctx context.Context) { c.runAll(ctx) }

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr == nil {
					s.Recovered = true
					log.Printf("[health] %s recovered after: %v", check.Name, err)
				} else {
					log.Printf("[health] %s unhealthy: %v (recovery: %v)", check.Name, err, rerr)
				}
			}
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkBoard(board domain.TaskBoard) error {
	want := max(board.Count(), 0)
	if got := board.Len(); got != want {
		return fmt.Errorf("board holds %d tasks, want %d", got, want)
	}
	return nil
}

func checkMirror(store domain.TaskStore, board domain.TaskBoard) error {
	s, err := store.Summary()
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	b := board.Batch()
	if s.BatchID != b.ID {
		return fmt.Errorf("mirror holds batch %q, board is at %q", s.BatchID, b.ID)
	}
	if s.Total != len(b.Tasks) {
		return fmt.Errorf("mirror holds %d tasks, board holds %d", s.Total, len(b.Tasks))
	}
	return nil
}
