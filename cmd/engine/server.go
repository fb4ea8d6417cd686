package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/telemetry"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// schedulerRunning tracks whether the cron scheduler has been started
// for this process, read by the /scheduler/status handler. A plain
// atomic rather than a scheduler-package field since only cmd/engine
// needs it and the scheduler itself has no notion of "has Start been
// called" beyond its heartbeat.
var schedulerRunning atomic.Bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

// newRouter builds the chi router for every in-scope HTTP endpoint:
// the best-bets contract handler plus the liveness/integrations/
// scheduler/training/pool-stats debug surface.
func (a *app) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/best-bets/{sport}", a.handleBestBets)
	r.Get("/healthz", a.handleHealthz)
	r.Get("/integrations", a.handleIntegrations)
	r.Get("/scheduler/status", a.handleSchedulerStatus)
	r.Get("/debug/training-status", a.handleTrainingStatus)
	r.Get("/debug/pool-stats", a.handlePoolStats)

	return r
}

func (a *app) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		log.Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("req_id", middleware.GetReqID(req.Context())).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

func (a *app) handleBestBets(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	debug := r.URL.Query().Get("debug") == "1"

	resp, err := a.engine.BestBets(r.Context(), sport, debug)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *app) handleHealthz(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		sport = "NCAAM"
	}
	heartbeat, stale := a.scheduler.Heartbeat(a.hasGradedPicksToday())
	report := telemetry.BuildHealthReport(r.Context(), a.registry, sport, heartbeat, stale)

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (a *app) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		sport = "NCAAM"
	}
	writeJSON(w, http.StatusOK, a.registry.ProbeAll(r.Context(), sport))
}

type jobStatusOut struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Trigger        string     `json:"trigger"`
	NextRunTimeET  *time.Time `json:"next_run_time_et,omitempty"`
}

func (a *app) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	now := a.authority.NowET()
	statuses := a.scheduler.Status()
	jobs := make([]jobStatusOut, 0, len(statuses))
	trainingRegistered := false
	for _, st := range statuses {
		out := jobStatusOut{ID: st.Name, Name: st.Name, Trigger: st.Schedule}
		if next, ok := a.scheduler.NextRun(st.Name, now); ok {
			out.NextRunTimeET = &next
		}
		if st.Name == "team_retrain" || st.Name == "lstm_retrain" {
			trainingRegistered = true
		}
		jobs = append(jobs, out)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":                   jobs,
		"scheduler_running":      schedulerRunning.Load(),
		"training_job_registered": trainingRegistered,
	})
}

type artifactProof struct {
	Exists bool   `json:"exists"`
	Size   int64  `json:"size"`
	Mtime  string `json:"mtime_iso,omitempty"`
}

func statProof(path string) artifactProof {
	info, err := os.Stat(path)
	if err != nil {
		return artifactProof{Exists: false}
	}
	return artifactProof{Exists: true, Size: info.Size(), Mtime: info.ModTime().UTC().Format(time.RFC3339)}
}

func (a *app) handleTrainingStatus(w http.ResponseWriter, r *http.Request) {
	lesson, err := a.store.LoadLatestLesson()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	records, err := a.store.JoinedPredictions()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	graded := 0
	for _, rec := range records {
		if rec.ActualOutcome != models.OutcomePending {
			graded++
		}
	}

	health := "NEVER_RUN"
	var lastRun *time.Time
	samplesUsed := 0
	if lesson != nil {
		health = "OK"
		if time.Since(lesson.GeneratedAtUTC) > 48*time.Hour {
			health = "STALE"
		}
		g := lesson.GeneratedAtUTC
		lastRun = &g
		samplesUsed = lesson.SamplesConsidered
	}

	weightsPath, _ := a.cfg.PathUnder("grader_data/weights.json")
	indexPath, _ := a.cfg.PathUnder("grader_data/index.sqlite")

	writeJSON(w, http.StatusOK, map[string]any{
		"training_health":           health,
		"last_train_run_at":        lastRun,
		"graded_samples_seen":       graded,
		"samples_used_for_training": samplesUsed,
		"artifact_proof": map[string]artifactProof{
			"weights.json":  statProof(weightsPath),
			"index.sqlite":  statProof(indexPath),
		},
	})
}

func (a *app) handlePoolStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":          a.cache.Stats(),
		"last_used":      telemetry.LastUsedSnapshot(),
		"date_et":        timeauthority.DateET(a.authority.NowET()),
	})
}

func (a *app) hasGradedPicksToday() bool {
	records, err := a.store.ReadPredictions()
	if err != nil {
		return false
	}
	today := timeauthority.DateET(a.authority.NowET())
	for _, r := range records {
		if r.DateET == today {
			return true
		}
	}
	return false
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := ":" + strconv.Itoa(port)
	log.Info().Str("addr", addr).Msg("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
