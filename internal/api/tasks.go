package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/app/shape"
	"github.com/gantry-dev/gantry/internal/domain"
)

// ─── Board endpoints (/v1/tasks) ────────────────────────────────────────────

type tasksResponse struct {
	BatchID     string             `json:"batch_id"`
	Seq         uint64             `json:"seq"`
	GeneratedAt time.Time          `json:"generated_at"`
	Count       int                `json:"count"`
	Tasks       []domain.GanttTask `json:"tasks"`
}

func batchResponse(b domain.Batch) tasksResponse {
	return tasksResponse{
		BatchID:     b.ID,
		Seq:         b.Seq,
		GeneratedAt: b.GeneratedAt,
		Count:       len(b.Tasks),
		Tasks:       b.Tasks,
	}
}

// --- GET /v1/tasks?user=&status= ---

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	batch := s.board.Batch()
	if filter == (domain.TaskFilter{}) {
		writeJSON(w, http.StatusOK, batchResponse(batch))
		return
	}

	tasks, err := s.store.Tasks(filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	batch.Tasks = tasks
	writeJSON(w, http.StatusOK, batchResponse(batch))
}

func parseFilter(r *http.Request) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	q := r.URL.Query()

	if user := q.Get("user"); user != "" {
		if !domain.IsKnownUser(user) {
			return f, fmt.Errorf("%w: %q", domain.ErrUnknownUser, user)
		}
		f.User = user
	}
	if status := q.Get("status"); status != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	return f, nil
}

// --- POST /v1/tasks/regenerate ---

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, batchResponse(s.board.Regenerate()))
}

// --- GET /v1/tasks/summary ---

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─── Stateless endpoints ────────────────────────────────────────────────────

// --- POST /v1/generate?count=&seed= ---
// Builds a throwaway board; the shared board is untouched.

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := domain.ParseCount(q.Get("count"), gantt.DefaultCount)
	if err != nil {
		writeErr(w, err)
		return
	}

	var seed uint64
	if raw := q.Get("seed"); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
	}

	board := gantt.Init(count, gantt.WithSeed(seed))
	writeJSON(w, http.StatusOK, batchResponse(board.Batch()))
}

// --- POST /v1/empty ---

type emptyResponse struct {
	Empty bool   `json:"empty"`
	Kind  string `json:"kind"`
}

func (s *Server) handleEmpty(w http.ResponseWriter, r *http.Request) {
	var v any
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body must hold one JSON value")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, emptyResponse{
		Empty: shape.IsEmpty(v),
		Kind:  shape.Of(v).String(),
	})
}
