package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yrrapt/analogen/internal/plot"
	"github.com/yrrapt/analogen/internal/sim"
	"github.com/yrrapt/analogen/internal/store"
)

// getStats handles GET /api/v1/stats: run counts by status plus total
// master and result counts, aggregated straight off the database.
func (s *Server) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := s.store.Query(ctx, "SELECT status, COUNT(*) FROM runs GROUP BY status")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer rows.Close()

	byStatus := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			s.fail(c, err)
			return
		}
		byStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		s.fail(c, err)
		return
	}

	var masters, results int64
	counts, err := s.store.Query(ctx,
		"SELECT (SELECT COUNT(*) FROM masters), (SELECT COUNT(*) FROM results)")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer counts.Close()
	if counts.Next() {
		if err := counts.Scan(&masters, &results); err != nil {
			s.fail(c, err)
			return
		}
	}
	if err := counts.Err(); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":    byStatus,
		"masters": masters,
		"results": results,
	})
}

// listRuns handles GET /api/v1/runs?limit=N, newest first.
func (s *Server) listRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// getRun handles GET /api/v1/runs/:token, returning the run and its
// stage trace.
func (s *Server) getRun(c *gin.Context) {
	token := c.Param("token")
	run, err := s.store.GetRun(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err)
		return
	}
	trace, err := s.store.ReadTrace(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err)
		return
	}
	if trace == nil {
		trace = []store.StageEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "trace": trace})
}

// getResults handles GET /api/v1/runs/:token/results. Waveform samples
// are omitted unless ?waveforms=1 is set; metrics are always included.
func (s *Server) getResults(c *gin.Context) {
	results, err := s.store.ReadResults(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if c.Query("waveforms") != "1" {
		for i := range results {
			results[i].Waveforms = nil
		}
	}
	if results == nil {
		results = sim.Results{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// getResultsTable handles GET /api/v1/runs/:token/results/table,
// returning the metrics as plain text.
func (s *Server) getResultsTable(c *gin.Context) {
	results, err := s.store.ReadResults(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(plot.MetricsTable(results)))
}

// getPlot handles GET /api/v1/runs/:token/plots/:wave, rendering the
// named waveform as SVG with one series per corner. Optional ?point=
// and ?analysis= select among sweep points and analyses; the first
// matching group is rendered otherwise.
func (s *Server) getPlot(c *gin.Context) {
	results, err := s.store.ReadResults(c.Request.Context(), c.Param("token"))
	if err != nil {
		s.fail(c, err)
		return
	}

	point := c.Query("point")
	analysis := c.Query("analysis")
	filtered := make(sim.Results, 0, len(results))
	for _, r := range results {
		if point != "" && r.Point != point {
			continue
		}
		if analysis != "" && r.Analysis != analysis {
			continue
		}
		filtered = append(filtered, r)
	}

	wave := c.Param("wave")
	plots := plot.FromResults(filtered, wave)
	if len(plots) == 0 {
		notFound(c, "no waveform "+wave+" in run results")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", plots[0].SVG())
}

// getMaster handles GET /api/v1/masters/:id.
func (s *Server) getMaster(c *gin.Context) {
	m, err := s.store.GetMaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"master": m})
}

// fail maps store errors to HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		notFound(c, err.Error())
		return
	}
	s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "INTERNAL_ERROR", "message": err.Error()},
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": "BAD_REQUEST", "message": msg},
	})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": gin.H{"code": "NOT_FOUND", "message": msg},
	})
}
