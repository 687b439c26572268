package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	rediscache "cryptoradar/internal/cache/redis"
	"cryptoradar/internal/config"
	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
	"cryptoradar/internal/scoring"
	"cryptoradar/internal/source"
)

// Broadcaster pushes an event to connected websocket clients. Satisfied by
// the broadcast hub; tests use a recording stub.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Scheduler runs ingestion passes: each pass walks the adapters in order,
// scores what they return, and upserts the results. Sources are polled
// sequentially with a pause in between so free-tier API quotas survive.
type Scheduler struct {
	Repo     repository.Repository
	Scorer   *scoring.Scorer
	Board    *source.StatusBoard
	Hub      Broadcaster
	Cache    *rediscache.QueryCache
	Logger   *zap.Logger
	Config   config.IngestConfig
	Adapters []source.Adapter

	inFlight atomic.Bool
}

// Warmup sleeps the configured delay and then runs the first pass. Meant to
// be launched as a goroutine at startup while cron owns the steady cadence.
func (s *Scheduler) Warmup(ctx context.Context) {
	if !wait(ctx, s.Config.WarmupDelay) {
		return
	}
	s.RunPass(ctx)
}

// RunPass executes one full ingestion pass. It returns false without doing
// any work when a previous pass is still in flight, so a slow pass never
// stacks behind the next cron tick.
func (s *Scheduler) RunPass(ctx context.Context) bool {
	if s == nil || s.Repo == nil {
		return false
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		if s.Logger != nil {
			s.Logger.Warn("ingestion pass still running, skipping tick")
		}
		return false
	}
	defer s.inFlight.Store(false)

	start := time.Now()
	stored := 0
	for i, adapter := range s.Adapters {
		if i > 0 && !wait(ctx, s.Config.AdapterDelay) {
			return true
		}
		stored += s.runAdapter(ctx, adapter)
	}

	if s.Logger != nil {
		s.Logger.Info("ingestion pass complete",
			zap.Int("sources", len(s.Adapters)),
			zap.Int("stored", stored),
			zap.Duration("elapsed", time.Since(start)))
	}

	s.publishRefresh(ctx)
	return true
}

// runAdapter fetches, scores, and upserts one source. A fetch error flips
// the source's health flag but any fallback candidates it returned are
// still stored.
func (s *Scheduler) runAdapter(ctx context.Context, adapter source.Adapter) int {
	name := adapter.Name()
	candidates, err := adapter.Fetch(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("source fetch failed", zap.String("source", name), zap.Error(err))
		}
		s.Board.MarkFailure(name, err)
	} else {
		s.Board.MarkSuccess(name)
	}

	stored := 0
	for _, c := range candidates {
		c.HotnessScore = s.Scorer.Score(c)
		item := models.FromCandidate(c)
		if err := s.Repo.UpsertOpportunityByContentKey(ctx, &item); err != nil {
			if s.Logger != nil {
				s.Logger.Error("upsert opportunity failed",
					zap.String("source", name), zap.String("name", c.Name), zap.Error(err))
			}
			continue
		}
		stored++
	}
	return stored
}

// publishRefresh pushes the post-pass view of active opportunities to
// websocket clients. Best effort: a read failure is logged and dropped.
func (s *Scheduler) publishRefresh(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil && s.Logger != nil {
		s.Logger.Warn("query cache invalidation failed", zap.Error(err))
	}
	if s.Hub == nil {
		return
	}
	items, err := s.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("post-pass opportunity read failed", zap.Error(err))
		}
		return
	}
	s.Hub.Broadcast("opportunities_update", items)
}

// wait sleeps d unless the context ends first. Returns false on cancel.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
