// Package server exposes the cracking engine as a JSON API with
// asynchronous jobs.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/felnanuke2/rapid-crak/config"
	"github.com/felnanuke2/rapid-crak/internal/cracker"
	"github.com/felnanuke2/rapid-crak/internal/jobstore"
	"github.com/felnanuke2/rapid-crak/pkg/api"
)

type Server struct {
	l       zerolog.Logger
	addr    string
	workers int
	jobs    jobstore.Store
}

func NewServer(cfg *config.DaemonConfig, jobs jobstore.Store) *Server {
	return &Server{
		addr:    cfg.ApiServerAddr,
		workers: cfg.WorkerCount,
		jobs:    jobs,
		l: log.With().
			Str("domain", "api-server").
			Str("type", "http").
			Logger(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.l.Info().Str("address", s.addr).Msg("Api server is running")
	server := http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}
	if err := server.ListenAndServe(); err != nil {
		s.l.Error().Err(err).Msg("Api server failed")
		return errors.Wrap(err, "api server failed")
	}
	return nil
}

// Router builds the mux routing table. Split out so tests drive the
// handlers without a listener.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(s.l))
	healthRouter := router.NewRoute().Subrouter()
	router.Use(jsonContentTypeMiddleware())
	router.HandleFunc("/api/crack", s.handleCrack).Methods("POST")
	router.HandleFunc("/api/crack", s.handleCancel).Methods("DELETE")
	router.HandleFunc("/api/crack/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/api/estimate", s.handleEstimate).Methods("POST")
	router.HandleFunc("/api/pause", s.handlePause).Methods("POST")
	healthRouter.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	return router
}

func engineConfig(c api.CrackConfig) cracker.Config {
	return cracker.Config{
		MinLength:     c.MinLength,
		MaxLength:     c.MaxLength,
		UseLowercase:  c.UseLowercase,
		UseUppercase:  c.UseUppercase,
		UseNumbers:    c.UseNumbers,
		UseSymbols:    c.UseSymbols,
		UseDictionary: c.UseDictionary,
		CustomWords:   c.CustomWords,
	}
}

func (s *Server) handleCrack(w http.ResponseWriter, r *http.Request) {
	var req api.CrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.l.Warn().Err(err).Msg("Invalid request")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	archiveBytes, err := base64.StdEncoding.DecodeString(req.Archive)
	if err != nil {
		s.l.Warn().Err(err).Msg("Invalid archive encoding")
		http.Error(w, "Invalid archive encoding", http.StatusBadRequest)
		return
	}

	cfg := engineConfig(req.Config)
	cfg.Workers = s.workers
	ctx, cancel := context.WithCancel(context.Background())
	job := s.jobs.Create(cancel)
	go s.runJob(ctx, job.ID, archiveBytes, cfg)

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(api.CrackResponse{RequestId: string(job.ID)}); err != nil {
		s.l.Warn().Err(err).Msg("Failed to encode response")
	}
}

// runJob drives one engine invocation, mirroring progress into the store.
func (s *Server) runJob(ctx context.Context, id jobstore.Id, archiveBytes []byte, cfg cracker.Config) {
	sink := make(chan cracker.Snapshot, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range sink {
			s.jobs.UpdateSnapshot(id, snap)
		}
	}()

	password, err := cracker.Crack(ctx, archiveBytes, cfg, sink)
	close(sink)
	<-done

	switch {
	case err == nil:
		s.jobs.Complete(id, jobstore.StatusReady, password, "")
	case errors.Is(err, cracker.ErrNotFound):
		s.jobs.Complete(id, jobstore.StatusExhausted, "", "")
	case errors.Is(err, cracker.ErrCancelled):
		s.jobs.Complete(id, jobstore.StatusCancelled, "", "")
	default:
		s.jobs.Complete(id, jobstore.StatusError, "", err.Error())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	requestId := r.URL.Query().Get("requestId")
	if requestId == "" {
		http.Error(w, "Missing requestId", http.StatusBadRequest)
		return
	}
	job, err := s.jobs.Get(jobstore.Id(requestId))
	if err != nil {
		http.Error(w, "Request not found", http.StatusNotFound)
		return
	}
	resp := api.StatusResponse{
		Status:   string(job.Status),
		Password: job.Password,
		Error:    job.ErrorReason,
		Progress: &api.ProgressSnapshot{
			Attempts:           job.LastSnapshot.Attempts,
			CurrentPassword:    job.LastSnapshot.CurrentPassword,
			ElapsedSeconds:     job.LastSnapshot.ElapsedSeconds,
			PasswordsPerSecond: job.LastSnapshot.PasswordsPerSecond,
			Phase:              job.LastSnapshot.Phase,
		},
	}
	if job.Status.Terminal() {
		s.jobs.Delete(job.ID)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.l.Warn().Err(err).Msg("Failed to encode response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestId := r.URL.Query().Get("requestId")
	if requestId == "" {
		http.Error(w, "Missing requestId", http.StatusBadRequest)
		return
	}
	job, err := s.jobs.Get(jobstore.Id(requestId))
	if err != nil {
		http.Error(w, "Request not found", http.StatusNotFound)
		return
	}
	job.Cancel()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req api.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	total, err := cracker.Estimate(engineConfig(req.Config))
	if err != nil {
		s.l.Warn().Err(err).Msg("Invalid estimate config")
		http.Error(w, "Invalid configuration", http.StatusBadRequest)
		return
	}
	if err := json.NewEncoder(w).Encode(api.EstimateResponse{Combinations: total.String()}); err != nil {
		s.l.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req api.PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cracker.SetPaused(req.Paused)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.l.Warn().Err(err).Msg("Failed to write health response")
	}
}
