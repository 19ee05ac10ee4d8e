package sqlite

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gantry-dev/gantry/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testBatch(id string) domain.Batch {
	start := time.Date(2026, 10, 12, 8, 30, 0, 123_000_000, time.UTC)
	return domain.Batch{
		ID:          id,
		Seq:         1,
		Count:       4,
		GeneratedAt: start,
		Tasks: []domain.GanttTask{
			{ID: 1, User: "Tom", Task: "Task 1", Status: domain.StatusCompleted, Start: start, End: start.AddDate(0, 0, 2), Progress: 100},
			{ID: 2, User: "Eve", Task: "Task 2", Status: domain.StatusTesting, Start: start, End: start.AddDate(0, 0, 1), Progress: 40},
			{ID: 3, User: "Tom", Task: "Task 3", Status: domain.StatusTesting, Start: start, End: start.AddDate(0, 0, 5), Progress: 20},
			{ID: 4, User: "Bob", Task: "Task 4", Status: domain.StatusOnHold, Start: start, End: start.AddDate(0, 0, 9), Progress: 0},
		},
	}
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_IsolatedInstances(t *testing.T) {
	a := newTestDB(t)
	b := newTestDB(t)

	if err := a.ReplaceBatch(testBatch("a")); err != nil {
		t.Fatalf("ReplaceBatch() error: %v", err)
	}
	tasks, err := b.Tasks(domain.TaskFilter{})
	if err != nil {
		t.Fatalf("Tasks() error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("second in-memory db sees %d tasks, want 0", len(tasks))
	}
}

func TestClose_RejectsCalls(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	if err := db.Ping(); !errors.Is(err, domain.ErrStoreClosed) {
		t.Errorf("Ping() after close = %v, want ErrStoreClosed", err)
	}
	if err := db.ReplaceBatch(testBatch("x")); !errors.Is(err, domain.ErrStoreClosed) {
		t.Errorf("ReplaceBatch() after close = %v, want ErrStoreClosed", err)
	}
	if _, err := db.Summary(); !errors.Is(err, domain.ErrStoreClosed) {
		t.Errorf("Summary() after close = %v, want ErrStoreClosed", err)
	}
}

// ─── Task Mirror ────────────────────────────────────────────────────────────

func TestReplaceBatch_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	batch := testBatch("batch-1")

	if err := db.ReplaceBatch(batch); err != nil {
		t.Fatalf("ReplaceBatch() error: %v", err)
	}

	got, err := db.Tasks(domain.TaskFilter{})
	if err != nil {
		t.Fatalf("Tasks() error: %v", err)
	}
	if len(got) != len(batch.Tasks) {
		t.Fatalf("Tasks() = %d rows, want %d", len(got), len(batch.Tasks))
	}
	for i, want := range batch.Tasks {
		g := got[i]
		if g.ID != want.ID || g.User != want.User || g.Task != want.Task ||
			g.Status != want.Status || g.Progress != want.Progress {
			t.Errorf("row %d = %+v, want %+v", i, g, want)
		}
		if !g.Start.Equal(want.Start) || !g.End.Equal(want.End) {
			t.Errorf("row %d times = %v..%v, want %v..%v", i, g.Start, g.End, want.Start, want.End)
		}
	}

	if id, _ := db.Info("batch_id"); id != "batch-1" {
		t.Errorf("Info(batch_id) = %q, want %q", id, "batch-1")
	}
}

func TestReplaceBatch_ReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	if err := db.ReplaceBatch(testBatch("first")); err != nil {
		t.Fatalf("ReplaceBatch() error: %v", err)
	}

	second := testBatch("second")
	second.Tasks = second.Tasks[:2]
	if err := db.ReplaceBatch(second); err != nil {
		t.Fatalf("ReplaceBatch() error: %v", err)
	}

	tasks, _ := db.Tasks(domain.TaskFilter{})
	if len(tasks) != 2 {
		t.Errorf("Tasks() = %d rows after replace, want 2", len(tasks))
	}
	if id, _ := db.Info("batch_id"); id != "second" {
		t.Errorf("Info(batch_id) = %q, want %q", id, "second")
	}
}

func TestReplaceBatch_RejectsBadRowAtomically(t *testing.T) {
	db := newTestDB(t)
	if err := db.ReplaceBatch(testBatch("good")); err != nil {
		t.Fatalf("ReplaceBatch() error: %v", err)
	}

	bad := testBatch("bad")
	bad.Tasks[3].Progress = 101
	if err := db.ReplaceBatch(bad); err == nil {
		t.Fatal("ReplaceBatch() with progress 101 should fail the CHECK constraint")
	}

	tasks, _ := db.Tasks(domain.TaskFilter{})
	if len(tasks) != 4 {
		t.Errorf("failed replace left %d rows, want the previous 4", len(tasks))
	}
	if id, _ := db.Info("batch_id"); id != "good" {
		t.Errorf("Info(batch_id) = %q, want %q", id, "good")
	}
}

func TestTasks_Filter(t *testing.T) {
	db := newTestDB(t)
	db.Mirror(testBatch("b"))

	tests := []struct {
		name    string
		filter  domain.TaskFilter
		wantIDs []int
	}{
		{"all", domain.TaskFilter{}, []int{1, 2, 3, 4}},
		{"user", domain.TaskFilter{User: "Tom"}, []int{1, 3}},
		{"status", domain.TaskFilter{Status: domain.StatusTesting}, []int{2, 3}},
		{"both", domain.TaskFilter{User: "Tom", Status: domain.StatusTesting}, []int{3}},
		{"none", domain.TaskFilter{User: "Mallory"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Tasks(tt.filter)
			if err != nil {
				t.Fatalf("Tasks() error: %v", err)
			}
			if got == nil {
				t.Fatal("Tasks() returned nil, want empty slice")
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Tasks() = %d rows, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("row %d id = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSummary(t *testing.T) {
	db := newTestDB(t)
	db.Mirror(testBatch("sum"))

	s, err := db.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if s.BatchID != "sum" {
		t.Errorf("BatchID = %q, want %q", s.BatchID, "sum")
	}
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.AvgProgress != 40 {
		t.Errorf("AvgProgress = %v, want 40", s.AvgProgress)
	}
	if s.ByStatus[domain.StatusTesting] != 2 || s.ByStatus[domain.StatusCompleted] != 1 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
	if s.ByUser["Tom"] != 2 || s.ByUser["Bob"] != 1 || s.ByUser["Eve"] != 1 {
		t.Errorf("ByUser = %v", s.ByUser)
	}
}

func TestSummary_Empty(t *testing.T) {
	db := newTestDB(t)

	s, err := db.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if s.Total != 0 || s.AvgProgress != 0 || s.BatchID != "" {
		t.Errorf("empty Summary() = %+v", s)
	}
}

func TestSummary_ConsistentUnderReplace(t *testing.T) {
	db := newTestDB(t)

	full := testBatch("full")
	short := testBatch("short")
	short.Tasks = short.Tasks[:1]
	short.Count = 1
	want := map[string]int{"full": 4, "short": 1}
	db.Mirror(full)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				db.Mirror(short)
			} else {
				db.Mirror(full)
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := 0; i < 200; i++ {
		s, err := db.Summary()
		if err != nil {
			t.Fatalf("Summary() error: %v", err)
		}
		if s.Total != want[s.BatchID] {
			t.Fatalf("summary of %q has total %d, want %d", s.BatchID, s.Total, want[s.BatchID])
		}
		byStatus, byUser := 0, 0
		for _, n := range s.ByStatus {
			byStatus += n
		}
		for _, n := range s.ByUser {
			byUser += n
		}
		if byStatus != s.Total || byUser != s.Total {
			t.Fatalf("summary of %q: by_status %d, by_user %d, total %d", s.BatchID, byStatus, byUser, s.Total)
		}
	}
}
