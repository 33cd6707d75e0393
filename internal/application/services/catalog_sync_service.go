package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
)

// CatalogSyncService keeps the token catalog in line with a token list source
type CatalogSyncService struct {
	source   repositories.TokenListSource
	catalog  *CatalogService
	interval time.Duration
	workers  int
	logger   *zap.Logger
	statsMu  sync.RWMutex
	stats    CatalogSyncStats
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// CatalogSyncStats tracks sync runs
type CatalogSyncStats struct {
	Runs          int64
	TokensSynced  int64
	LastSyncTime  time.Time
	LastLatencyMs int64
	ErrorCount    int64
}

// NewCatalogSyncService creates a new sync service
func NewCatalogSyncService(
	source repositories.TokenListSource,
	catalog *CatalogService,
	interval time.Duration,
	workers int,
	logger *zap.Logger,
) *CatalogSyncService {
	return &CatalogSyncService{
		source:   source,
		catalog:  catalog,
		interval: interval,
		workers:  workers,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// SyncOnce loads the source and imports it into the catalog
func (s *CatalogSyncService) SyncOnce(ctx context.Context) (*ImportResult, error) {
	startTime := time.Now()

	tokens, err := s.source.LoadTokens(ctx)
	if err != nil {
		s.incrementErrorCount()
		return nil, fmt.Errorf("failed to load token lists: %w", err)
	}

	result, err := s.catalog.Import(ctx, tokens, s.workers)
	if err != nil {
		s.incrementErrorCount()
		return nil, err
	}

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.TokensSynced += int64(result.Imported)
	s.stats.LastSyncTime = time.Now()
	s.stats.LastLatencyMs = time.Since(startTime).Milliseconds()
	s.statsMu.Unlock()

	return result, nil
}

// Start runs a sync immediately and then on every interval until Stop or ctx is done.
// A non-positive interval runs a single sync. The loop is started even when the
// first sync fails; that error is still returned.
func (s *CatalogSyncService) Start(ctx context.Context) error {
	s.logger.Info("Starting catalog sync", zap.Duration("interval", s.interval))

	_, err := s.SyncOnce(ctx)
	if s.interval <= 0 {
		return err
	}
	if err != nil {
		s.logger.Error("Initial catalog sync failed, retrying on interval", zap.Error(err))
	}

	s.wg.Add(1)
	go s.runSyncLoop(ctx)

	return err
}

// Stop ends the sync loop and waits for a running sync to finish
func (s *CatalogSyncService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping catalog sync")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// GetStats returns a snapshot of sync counters
func (s *CatalogSyncService) GetStats() CatalogSyncStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

func (s *CatalogSyncService) runSyncLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				s.logger.Error("Catalog sync failed", zap.Error(err))
			}
		}
	}
}

func (s *CatalogSyncService) incrementErrorCount() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.ErrorCount++
}
