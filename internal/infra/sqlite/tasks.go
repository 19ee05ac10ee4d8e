package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gantry-dev/gantry/internal/domain"
)

// ─── Task Mirror ────────────────────────────────────────────────────────────

// ReplaceBatch swaps the stored tasks for b's tasks in one transaction.
func (d *DB) ReplaceBatch(b domain.Batch) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return domain.ErrStoreClosed
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gantt_tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO gantt_tasks (id, user, task, status, start_ms, end_ms, progress)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range b.Tasks {
		if _, err := stmt.Exec(
			t.ID, t.User, t.Task, string(t.Status),
			t.Start.UnixMilli(), t.End.UnixMilli(), t.Progress,
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	meta := map[string]string{
		"batch_id":     b.ID,
		"seq":          strconv.FormatUint(b.Seq, 10),
		"generated_at": b.GeneratedAt.Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			`INSERT INTO store_info (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Mirror is a board observer that keeps the store in step with every batch.
func (d *DB) Mirror(b domain.Batch) {
	if err := d.ReplaceBatch(b); err != nil {
		log.Printf("[sqlite] mirror batch %s: %v", b.ID, err)
	}
}

// Tasks returns the stored tasks matching f, ordered by id.
func (d *DB) Tasks(f domain.TaskFilter) ([]domain.GanttTask, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, domain.ErrStoreClosed
	}

	var (
		where []string
		args  []any
	)
	if f.User != "" {
		where = append(where, "user = ?")
		args = append(args, f.User)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT id, user, task, status, start_ms, end_ms, progress FROM gantt_tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.GanttTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Summary aggregates the stored batch by status and user. All reads run in
// one transaction, so a concurrent ReplaceBatch cannot split the result
// across two batches.
func (d *DB) Summary() (domain.Summary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return domain.Summary{}, domain.ErrStoreClosed
	}

	s := domain.Summary{
		ByStatus: make(map[domain.TaskStatus]int, len(domain.Statuses)),
		ByUser:   make(map[string]int, len(domain.Users)),
	}

	tx, err := d.db.Begin()
	if err != nil {
		return s, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(progress), 0) FROM gantt_tasks`,
	).Scan(&s.Total, &s.AvgProgress)
	if err != nil {
		return s, fmt.Errorf("totals: %w", err)
	}

	if err := groupCount(tx, `status`, func(k string, n int) {
		s.ByStatus[domain.TaskStatus(k)] = n
	}); err != nil {
		return s, err
	}
	if err := groupCount(tx, `user`, func(k string, n int) {
		s.ByUser[k] = n
	}); err != nil {
		return s, err
	}

	if s.BatchID, err = infoFrom(tx, "batch_id"); err != nil {
		return s, err
	}
	return s, tx.Commit()
}

// groupCount runs a GROUP BY over one whitelisted column.
func groupCount(q querier, column string, fn func(key string, n int)) error {
	rows, err := q.Query(
		`SELECT ` + column + `, COUNT(*) FROM gantt_tasks GROUP BY ` + column + ` ORDER BY ` + column,
	)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		fn(key, n)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func scanTask(s scanner) (domain.GanttTask, error) {
	var t domain.GanttTask
	var status string
	var startMs, endMs int64
	if err := s.Scan(&t.ID, &t.User, &t.Task, &status, &startMs, &endMs, &t.Progress); err != nil {
		return t, err
	}
	t.Status = domain.TaskStatus(status)
	t.Start = time.UnixMilli(startMs)
	t.End = time.UnixMilli(endMs)
	return t, nil
}
