package api

import (
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/typedensity/typedensity/internal/reportdb"
	"github.com/typedensity/typedensity/pkg/javatype"
	"github.com/typedensity/typedensity/pkg/report"
	"github.com/typedensity/typedensity/pkg/study"
)

// maxStudyBody bounds the decoded request body of POST /v1/study.
const maxStudyBody = 256 << 20

// handleStudy handles POST /v1/study. The body is a JSON array of encoded
// units, optionally gzip-compressed. The response is the report.
func (h *Handler) handleStudy(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body: "+err.Error())
			return
		}
		defer gz.Close()
		body = gz
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(body, maxStudyBody)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "no units in request")
		return
	}

	units := make([]*javatype.Unit, 0, len(raw))
	for i, data := range raw {
		u, err := javatype.DecodeUnit(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unit %d: %v", i, err))
			return
		}
		units = append(units, u)
	}

	project := r.URL.Query().Get("project")
	if project == "" {
		project = "default"
	}

	rep, err := h.runStudy(r, project, units)
	observeRun(rep, err)
	if err != nil {
		log.Printf("study error: %v", err)
		writeError(w, http.StatusInternalServerError, "study failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) runStudy(r *http.Request, project string, units []*javatype.Unit) (*report.Report, error) {
	ctx := r.Context()
	runID := uuid.New().String()
	s := &study.Study{
		Cache:       h.variants,
		RunID:       runID,
		Parallelism: h.parallelism,
		Logf: func(format string, args ...any) {
			log.Printf("run %s: "+format, append([]any{runID}, args...)...)
		},
	}

	if h.db != nil {
		if _, err := h.db.CreateRun(ctx, runID, project); err != nil {
			return nil, err
		}
		s.Sink = h.db.Sink(runID)
	}

	rep, err := s.Run(ctx, units)
	if err != nil {
		if h.db != nil {
			// The request context may already be canceled.
			if ferr := h.db.FailRun(context.WithoutCancel(ctx), runID, err); ferr != nil {
				log.Printf("run %s: %v", runID, ferr)
			}
		}
		return nil, err
	}

	if h.db != nil {
		if err := h.db.FinishRun(ctx, rep); err != nil {
			return nil, err
		}
	}
	if h.blobs != nil {
		data, err := json.Marshal(rep)
		if err == nil {
			err = h.blobs.PutReport(ctx, project, runID, data)
		}
		if err != nil {
			log.Printf("run %s: archive report: %v", runID, err)
		}
	}
	h.reports.Put(rep)
	return rep, nil
}

// handleGetRun handles GET /v1/runs/{runID}. Recent runs are served from
// memory, older ones from the database when configured.
func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")
	if rep := h.reports.Get(runID); rep != nil {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	if _, err := uuid.Parse(runID); err != nil || h.db == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	run, err := h.db.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		log.Printf("get run %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	// Only finished runs have a complete report; others return their record.
	if run.Status != reportdb.StatusFinished {
		writeJSON(w, http.StatusOK, run)
		return
	}
	rows, err := h.db.ListRows(r.Context(), runID)
	if err != nil {
		log.Printf("list rows %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "failed to load rows")
		return
	}

	rep := &report.Report{
		RunID:      run.ID,
		StartedAt:  run.StartedAt,
		DurationMs: run.DurationMs,
		Rows:       rows,
		Summary:    report.Summarize(rows),
	}
	rep.Summary.CanonicalTypes = run.CanonicalTypes
	writeJSON(w, http.StatusOK, rep)
}

// handleListRuns handles GET /v1/runs?project=&limit=. Run history lives
// only in the database.
func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeError(w, http.StatusNotImplemented, "run history requires a database")
		return
	}
	project := r.URL.Query().Get("project")
	if project == "" {
		project = "default"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.db.ListRuns(r.Context(), project, limit)
	if err != nil {
		log.Printf("list runs %s: %v", project, err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []reportdb.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleCacheStats handles GET /v1/cache.
func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"canonical_types": h.variants.Len(),
		"signatures":      len(h.variants.Signatures()),
		"cached_reports":  h.reports.Len(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"canonical_types": h.variants.Len(),
	})
}
