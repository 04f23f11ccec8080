package syncjob

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/sync"

	"go.uber.org/zap"
)

// Pinger is the pre-flight connection test surface of the remote client.
type Pinger interface {
	TestConnection(ctx context.Context) bool
}

// Service owns the registry of sync runners and starts new runs.
type Service struct {
	remote sync.Remote
	pinger Pinger
	store  catalog.Store
	logger *zap.Logger
	opts   sync.Options

	mu      gosync.RWMutex
	runners map[string]*sync.Runner
}

// NewService creates a new sync job service.
func NewService(remote sync.Remote, pinger Pinger, store catalog.Store, logger *zap.Logger, opts sync.Options) *Service {
	return &Service{
		remote:  remote,
		pinger:  pinger,
		store:   store,
		logger:  logger,
		opts:    opts,
		runners: make(map[string]*sync.Runner),
	}
}

// StartRun launches a background run over the given book IDs, or over the
// whole library when ids is empty. Returns the new runner.
func (s *Service) StartRun(ctx context.Context, ids []int64) (*sync.Runner, error) {
	if len(ids) == 0 {
		all, err := s.store.AllIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get book list: %w", err)
		}
		ids = all
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no books found in the library")
	}

	engine := sync.NewEngine(s.remote, s.store, s.logger, s.opts)
	runner := sync.NewRunner(engine, ids, s.logger)

	s.mu.Lock()
	s.runners[runner.ID()] = runner
	s.mu.Unlock()

	// The run outlives the request; it completes or fails as a unit.
	runner.Start(context.WithoutCancel(ctx))

	return runner, nil
}

// GetRun looks up a runner by its ID.
func (s *Service) GetRun(id string) (*sync.Runner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runner, ok := s.runners[id]
	return runner, ok
}

// TestConnection performs the pre-flight API token check.
func (s *Service) TestConnection(ctx context.Context) bool {
	return s.pinger.TestConnection(ctx)
}
