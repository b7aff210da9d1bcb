// Package jobstore tracks running and finished crack jobs. State lives only
// in memory; the system persists nothing across restarts.
package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/felnanuke2/rapid-crak/internal/cracker"
)

var NotFoundErr = errors.New("job not found")

type Id string

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusReady     Status = "READY"
	StatusExhausted Status = "NOT_FOUND"
	StatusCancelled Status = "CANCELLED"
	StatusError     Status = "ERROR"
)

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// Job is a snapshot of one crack invocation's lifecycle.
type Job struct {
	ID           Id
	Status       Status
	Password     string
	ErrorReason  string
	CreatedAt    time.Time
	LastSnapshot cracker.Snapshot

	cancel context.CancelFunc
}

// Cancel detaches the job's observer, draining its workers.
func (j *Job) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
}

type Store interface {
	Create(cancel context.CancelFunc) *Job
	Get(id Id) (*Job, error)
	UpdateSnapshot(id Id, snap cracker.Snapshot)
	Complete(id Id, status Status, password, errorReason string)
	Delete(id Id)
}

type store struct {
	m    sync.RWMutex
	data map[Id]*Job
}

func NewStore() Store {
	return &store{data: make(map[Id]*Job)}
}

func (s *store) Create(cancel context.CancelFunc) *Job {
	s.m.Lock()
	defer s.m.Unlock()
	job := &Job{
		ID:        Id(uuid.NewString()),
		Status:    StatusRunning,
		CreatedAt: time.Now(),
		cancel:    cancel,
	}
	s.data[job.ID] = job
	return job.copy()
}

func (s *store) Get(id Id) (*Job, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	job, exists := s.data[id]
	if !exists {
		return nil, NotFoundErr
	}
	return job.copy(), nil
}

func (s *store) UpdateSnapshot(id Id, snap cracker.Snapshot) {
	s.m.Lock()
	defer s.m.Unlock()
	if job, exists := s.data[id]; exists {
		job.LastSnapshot = snap
	}
}

func (s *store) Complete(id Id, status Status, password, errorReason string) {
	s.m.Lock()
	defer s.m.Unlock()
	if job, exists := s.data[id]; exists {
		job.Status = status
		job.Password = password
		job.ErrorReason = errorReason
	}
}

func (s *store) Delete(id Id) {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, id)
}

func (j *Job) copy() *Job {
	cp := *j
	return &cp
}
