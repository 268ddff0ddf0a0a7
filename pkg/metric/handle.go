package metric

import (
	"context"
	"fmt"
	"sync"

	"sweepgo/pkg/core"
)

// HandleSource serves curves straight from registered runner handles. Drivers
// that manage handles themselves can hand the scheduler this source instead of
// a file-backed one.
type HandleSource struct {
	mu      sync.RWMutex
	handles map[string]core.Handle
}

func (s *HandleSource) Name() string {
	return "handle"
}

// Register associates a trial with its handle. Re-registering replaces.
func (s *HandleSource) Register(trialID string, handle core.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles == nil {
		s.handles = make(map[string]core.Handle)
	}
	s.handles[trialID] = handle
}

func (s *HandleSource) Fetch(_ context.Context, trialID, _ string) ([]core.Measurement, error) {
	s.mu.RLock()
	handle, ok := s.handles[trialID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metric: no handle registered for trial %s", trialID)
	}
	return handle.Curve(), nil
}
