// Package artifact provides the namespaced, write-once output store that
// lets a job publish named values consumable by downstream jobs. Keys are
// (producing job id, output name). Only the owning job writes its own
// outputs, and only while it is running; readers see them once the
// producer is terminal.
package artifact

import (
	"sync"

	"github.com/vk/jobgridgo/internal/cierr"
)

// Store is a thread-safe in-memory artifact store for a single run.
type Store struct {
	mu sync.RWMutex
	// open tracks jobs currently allowed to write (status running).
	open map[string]struct{}
	// closed tracks jobs that reached a terminal state.
	closed map[string]struct{}
	values map[string]map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		open:   make(map[string]struct{}),
		closed: make(map[string]struct{}),
		values: make(map[string]map[string]string),
	}
}

// Open marks a job as running, enabling Put for its keys. Called by the
// executor on the pending-to-running transition.
func (s *Store) Open(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[jobID] = struct{}{}
}

// Close marks a job terminal. Its outputs become visible to consumers and
// further writes are rejected. Closing a job that never opened (skipped or
// cancelled) records it with no outputs.
func (s *Store) Close(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, jobID)
	s.closed[jobID] = struct{}{}
}

// Put records one output of a running job. Writing before the job is
// running, after it is terminal, or to an existing key is an error.
func (s *Store) Put(jobID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.open[jobID]; !ok {
		return &cierr.ArtifactError{JobID: jobID, Name: name, Err: cierr.ErrProducerNotOpen}
	}
	outputs := s.values[jobID]
	if outputs == nil {
		outputs = make(map[string]string)
		s.values[jobID] = outputs
	}
	if _, exists := outputs[name]; exists {
		return &cierr.ArtifactError{JobID: jobID, Name: name, Err: cierr.ErrDuplicateWrite}
	}
	outputs[name] = value
	return nil
}

// Get returns one output of a terminal producer. It fails with NotReady
// while the producer has not reached a terminal state and with NotFound
// when the producer finished without writing the key.
func (s *Store) Get(jobID, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, terminal := s.closed[jobID]; !terminal {
		return "", &cierr.ArtifactError{JobID: jobID, Name: name, Err: cierr.ErrArtifactNotReady}
	}
	value, ok := s.values[jobID][name]
	if !ok {
		return "", &cierr.ArtifactError{JobID: jobID, Name: name, Err: cierr.ErrArtifactNotFound}
	}
	return value, nil
}

// Collect returns a copy of every output a terminal producer wrote. The
// executor uses it to assemble the `needs` object for downstream env
// expressions.
func (s *Store) Collect(jobID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, terminal := s.closed[jobID]; !terminal {
		return nil, &cierr.ArtifactError{JobID: jobID, Err: cierr.ErrArtifactNotReady}
	}
	out := make(map[string]string, len(s.values[jobID]))
	for name, value := range s.values[jobID] {
		out[name] = value
	}
	return out, nil
}
