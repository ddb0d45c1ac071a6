package services

import (
	"context"
	"sync"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
	"golang.org/x/exp/slog"
)

// replyCountTTL bounds how long a cached reply count may serve ticks before
// a fresh lookup, in case the post-created hook is not wired up
const replyCountTTL = 5 * time.Minute

type cachedCount struct {
	count     int
	fetchedAt time.Time
}

// Scheduler polls running lotteries on a fixed cadence and fires the draw
// for every record whose trigger condition has been met. Failures are
// isolated per record: one bad lottery never blocks the batch.
type Scheduler struct {
	lotteryRepo repositories.LotteryRepository
	drawService DrawService
	forumClient forum.Client
	interval    time.Duration

	mu          sync.Mutex
	replyCounts map[int64]cachedCount
}

// NewScheduler creates a new Scheduler
func NewScheduler(lotteryRepo repositories.LotteryRepository, drawService DrawService, forumClient forum.Client, interval time.Duration) *Scheduler {
	return &Scheduler{
		lotteryRepo: lotteryRepo,
		drawService: drawService,
		forumClient: forumClient,
		interval:    interval,
		replyCounts: make(map[int64]cachedCount),
	}
}

// Start runs the tick loop until the context is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("lottery scheduler started", "interval", s.interval)
		for {
			select {
			case <-ctx.Done():
				slog.Info("lottery scheduler stopped")
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Tick evaluates every due candidate once. Exported so a manual re-trigger
// and tests can drive the scheduler without waiting for the ticker.
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now()
	candidates, err := s.lotteryRepo.FindDueCandidates(ctx, now)
	if err != nil {
		slog.Error("failed to load due lotteries", "error", err)
		return
	}

	for _, lottery := range candidates {
		s.process(ctx, lottery, now)
	}
}

// InvalidateThread drops the cached reply count for a thread. Wired to the
// platform's post-created event.
func (s *Scheduler) InvalidateThread(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.replyCounts, threadID)
}

// process evaluates and possibly draws one lottery, containing any panic or
// error within this record's boundary
func (s *Scheduler) process(ctx context.Context, lottery *models.Lottery, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while processing lottery", "lotteryId", lottery.ID, "threadId", lottery.ThreadID, "panic", r)
		}
	}()

	replyCount := 0
	if lottery.Config.DrawType == models.DrawTypeByReply {
		count, err := s.replyCount(ctx, lottery.ThreadID, now)
		if err != nil {
			slog.Error("failed to fetch reply count", "error", err, "lotteryId", lottery.ID, "threadId", lottery.ThreadID)
			return
		}
		replyCount = count
	}

	if !ShouldDraw(lottery, now, replyCount) {
		return
	}

	slog.Info("lottery condition met, performing draw", "lotteryId", lottery.ID, "threadId", lottery.ThreadID)
	if err := s.drawService.PerformDraw(ctx, lottery); err != nil {
		slog.Error("draw failed", "error", err, "lotteryId", lottery.ID, "threadId", lottery.ThreadID)
	}
}

func (s *Scheduler) replyCount(ctx context.Context, threadID int64, now time.Time) (int, error) {
	s.mu.Lock()
	cached, ok := s.replyCounts[threadID]
	s.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < replyCountTTL {
		return cached.count, nil
	}

	count, err := s.forumClient.ReplyCount(ctx, threadID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.replyCounts[threadID] = cachedCount{count: count, fetchedAt: now}
	s.mu.Unlock()
	return count, nil
}
